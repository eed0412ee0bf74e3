package badger

import (
	"bytes"
	"fmt"
	"strconv"
)

// Key prefixes for different data types
const (
	vectorPrefix   = "vec"
	dimensionKey   = "meta:dim"
	defaultMetric  = "cosine"
	localIndexName = "local"
)

// makeVectorKey generates a key for a vector.
// Format: vec:<len(namespace)>:<namespace>:<id>
// The length prefix keeps namespaces containing ':' unambiguous.
func makeVectorKey(namespace, id string) []byte {
	return []byte(fmt.Sprintf("%s:%d:%s:%s", vectorPrefix, len(namespace), namespace, id))
}

// parseVectorKey splits a vector key into namespace and id.
func parseVectorKey(key []byte) (namespace, id string, ok bool) {
	rest, found := bytes.CutPrefix(key, []byte(vectorPrefix+":"))
	if !found {
		return "", "", false
	}
	lenPart, rest, found := bytes.Cut(rest, []byte(":"))
	if !found {
		return "", "", false
	}
	n, err := strconv.Atoi(string(lenPart))
	if err != nil || n < 0 || len(rest) < n+1 || rest[n] != ':' {
		return "", "", false
	}
	return string(rest[:n]), string(rest[n+1:]), true
}
