package study

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// importNamespace seeds the name-based ids of imported records.
var importNamespace = uuid.MustParse("6f1c2a44-9d0e-5b7a-8c3e-1f24d5a7b901")

// ImportID derives a stable id from the owner and a record's natural key so
// importing the same file twice updates rows instead of duplicating them.
func ImportID(userID uuid.UUID, kind string, key ...string) uuid.UUID {
	name := userID.String() + "|" + kind + "|" + strings.Join(key, "|")
	return uuid.NewSHA1(importNamespace, []byte(name))
}

// ImportKeys hands out natural keys that are unique within one import. A
// repeated key, such as a resit listed under the same course and item, gets
// an occurrence suffix ("#2" for the second), so the first occurrence keeps
// its id and every row of the file is stored.
type ImportKeys map[string]int

func (k ImportKeys) Next(key string) string {
	if k[key] == 0 {
		k[key] = 1
		return key
	}
	for n := k[key] + 1; ; n++ {
		cand := key + "#" + strconv.Itoa(n)
		if k[cand] == 0 {
			k[key] = n
			k[cand] = 1
			return cand
		}
	}
}
