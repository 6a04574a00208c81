package utils

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var encoding = sync.OnceValues(func() (*tiktoken.Tiktoken, error) {
	return tiktoken.GetEncoding("cl100k_base")
})

// CountTokens reports the cl100k token count of text. Returns 0 when the
// encoding cannot be loaded; callers treat the count as advisory.
func CountTokens(text string) int {
	enc, err := encoding()
	if err != nil {
		return 0
	}
	return len(enc.Encode(text, nil, nil))
}
