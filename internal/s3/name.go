package s3

import (
	"math/rand/v2"
	"strings"

	"github.com/gosimple/slug"
)

const (
	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffixLength   = 6
)

// UniqueBucketName derives a bucket name from 'base': slugified to satisfy
// S3's naming rules, then suffixed with six random lowercase/digit characters.
// Bucket names are globally scoped, so unlike security group naming there is
// no inventory to check against; the random suffix is the whole collision
// strategy.
func UniqueBucketName(base string) string {
	cleaned := slug.Make(base)
	if cleaned == "" {
		cleaned = "sitelift"
	}

	var suffix strings.Builder
	for range suffixLength {
		suffix.WriteByte(suffixAlphabet[rand.IntN(len(suffixAlphabet))])
	}
	return cleaned + "-" + suffix.String()
}
