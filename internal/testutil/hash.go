package testutil

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
)

// SHA1Hex returns the SHA-1 digest of data as lowercase hex, the form used
// for content paths.
func SHA1Hex(data []byte) string {
	h := sha1.Sum(data)
	return hex.EncodeToString(h[:])
}

// MD5Hex returns the MD5 digest of data as lowercase hex.
func MD5Hex(data []byte) string {
	h := md5.Sum(data)
	return hex.EncodeToString(h[:])
}
