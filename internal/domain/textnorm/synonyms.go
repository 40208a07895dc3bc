package textnorm

// synonyms maps a cleaned, dot-stripped term to its canonical token. It is
// built once and never written afterwards, so concurrent reads are safe.
var synonyms = map[string]string{
	"js":             "javascript",
	"nodejs":         "node",
	"node.js":        "node",
	"typescript":     "ts",
	"postgres":       "postgresql",
	"postgre":        "postgresql",
	"rest":           "api",
	"apis":           "api",
	"api rest":       "api",
	"apis rest":      "api",
	"ci/cd":          "cicd",
	"ci cd":          "cicd",
	"ci":             "cicd",
	"cd":             "cicd",
	"docker compose": "docker",
	"k8s":            "kubernetes",
}

// Lookup returns the canonical form of an already cleaned term, or the term
// itself when it has no synonym. Matching is exact, never by substring.
func Lookup(term string) string {
	if canon, ok := synonyms[term]; ok {
		return canon
	}
	return term
}

// Synonyms returns a copy of the synonym table.
func Synonyms() map[string]string {
	out := make(map[string]string, len(synonyms))
	for k, v := range synonyms {
		out[k] = v
	}
	return out
}
