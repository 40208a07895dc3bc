package textnorm

import (
	"sort"
	"strings"
)

// minBigramLen is the length a bigram must exceed to enter a bag.
const minBigramLen = 2

// TokenBag is a deduplicated set of normalized tokens. Insertion order is kept
// so iteration is deterministic.
type TokenBag struct {
	index  map[string]struct{}
	tokens []string
}

// NewTokenBag returns an empty bag.
func NewTokenBag() *TokenBag {
	return &TokenBag{index: make(map[string]struct{})}
}

// Add inserts tok unless it is empty or already present.
func (b *TokenBag) Add(tok string) {
	if tok == "" {
		return
	}
	if _, ok := b.index[tok]; ok {
		return
	}
	b.index[tok] = struct{}{}
	b.tokens = append(b.tokens, tok)
}

// Has reports whether tok is in the bag.
func (b *TokenBag) Has(tok string) bool {
	_, ok := b.index[tok]
	return ok
}

// Len returns the number of distinct tokens.
func (b *TokenBag) Len() int { return len(b.tokens) }

// Tokens returns the tokens in insertion order. The slice is a copy.
func (b *TokenBag) Tokens() []string {
	out := make([]string, len(b.tokens))
	copy(out, b.tokens)
	return out
}

// Sorted returns the tokens in lexical order.
func (b *TokenBag) Sorted() []string {
	out := b.Tokens()
	sort.Strings(out)
	return out
}

// Tokenize builds a bag from one or more source strings treated as one
// logical source. For each source it adds the canonized words, the canonized
// adjacent bigrams longer than two characters, and the concatenation of all
// words (so "ci cd" also yields "cicd"). Blank sources add nothing.
func Tokenize(sources ...string) *TokenBag {
	bag := NewTokenBag()
	for _, src := range sources {
		addSource(bag, src)
	}
	return bag
}

func addSource(bag *TokenBag, src string) {
	canon := Canonize(src)
	if canon == "" {
		return
	}
	words := strings.Fields(canon)
	for _, w := range words {
		bag.Add(Canonize(w))
	}
	for i := 0; i+1 < len(words); i++ {
		bi := words[i] + " " + words[i+1]
		if len(bi) > minBigramLen {
			bag.Add(Canonize(bi))
		}
	}
	bag.Add(strings.Join(words, ""))
}
