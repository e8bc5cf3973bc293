package delivery

import (
	"regexp"
)

// Logical buckets a file reference can point into.
const (
	BucketUploads    = "uploads"
	BucketThumbnails = "thumbnails"
	BucketAvatars    = "avatars"
)

var fileReferencePrefix = regexp.MustCompile(`^(uploads|thumbnails|avatars)/`)

// ObjectLocation addresses one object in a logical bucket.
type ObjectLocation struct {
	Bucket string
	Key    string
}

// ResolvePath splits a stored file reference into bucket and key.
// References without a known prefix live in the uploads bucket under their
// full string; this fallback is intentional and never an error.
func ResolvePath(ref string) ObjectLocation {
	if m := fileReferencePrefix.FindStringSubmatch(ref); m != nil {
		return ObjectLocation{Bucket: m[1], Key: ref[len(m[0]):]}
	}
	return ObjectLocation{Bucket: BucketUploads, Key: ref}
}
