package video

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mgusev/vidhub/internal/models"
)

/*
 * Normalization code here was mostly taken from
 * github.com/lithammer/fuzzysearch/fuzzy. It is not public
 * for external use, so it is copied and customised.
 */

var (
	normalizeTransformer transform.Transformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	transformer                                = transform.Chain(normalizeTransformer, unicodeFoldTransformer{})
)

// searchVideos keeps the videos whose normalized title contains the
// normalized query and ranks the matches. sqlite's lower() folds
// ASCII only, so the filter runs here with the same transform the
// ranking uses.
func searchVideos(videos []models.Video, query string) []models.Video {
	folded := stringTransform(query)

	matched := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if strings.Contains(stringTransform(v.Title), folded) {
			matched = append(matched, v)
		}
	}

	return rankVideos(matched, query)
}

type videoRank struct {
	video models.Video
	rank  int
}

func rankCmp(vr1, vr2 videoRank) int {
	return vr1.rank - vr2.rank
}

// rankVideos orders substring matches by the Levenshtein distance
// between the normalized title and the query, closest first. The
// sort is stable, so equally ranked videos keep the storage order
// (newest first).
func rankVideos(videos []models.Video, query string) []models.Video {
	ranked := make([]videoRank, 0, len(videos))
	for _, v := range videos {
		ranked = append(ranked, videoRank{
			video: v,
			rank:  fuzzy.LevenshteinDistance(stringTransform(v.Title), stringTransform(query)),
		})
	}

	slices.SortStableFunc(ranked, rankCmp)

	out := make([]models.Video, 0, len(ranked))
	for _, vr := range ranked {
		out = append(out, vr.video)
	}

	return out
}

func stringTransform(s string) (transformed string) {
	var err error
	transformed, _, err = transform.String(transformer, s)
	if err != nil {
		transformed = s
	}

	return
}

type unicodeFoldTransformer struct{ transform.NopResetter }

func (unicodeFoldTransformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for _, r := range string(src) {
		if r == utf8.RuneError {
			// Go spec for ranging over a string says:
			// If the iteration encounters an invalid UTF-8 sequence,
			// the second value will be 0xFFFD, the Unicode replacement character,
			// and the next iteration will advance a single byte in the string.
			nSrc++
		} else {
			nSrc += utf8.RuneLen(r)
		}
		r = unicode.ToLower(r)
		x := utf8.RuneLen(r)
		if x > len(dst[nDst:]) {
			err = transform.ErrShortDst
			break
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
	}
	return nDst, nSrc, err
}
