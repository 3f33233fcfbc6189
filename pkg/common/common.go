package common

import (
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	idNode     *snowflake.Node
	idNodeOnce sync.Once
)

func node() *snowflake.Node {
	idNodeOnce.Do(func() {
		n, err := snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
		idNode = n
	})
	return idNode
}

// UUIDint64 returns a unique, time-ordered int64 id
func UUIDint64() int64 {
	return node().Generate().Int64()
}

// IsEmptyOrNA reports whether s is blank or the "N/A" placeholder
func IsEmptyOrNA(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "N/A")
}

// TrimStrings trims every entry and drops the blank ones
func TrimStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Truncate returns at most n leading entries of items
func Truncate[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
