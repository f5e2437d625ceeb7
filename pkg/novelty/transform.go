package novelty

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Transformer turns raw submission text into its display string.
// Implementations are expected to be free of side effects.
type Transformer interface {
	Transform(ctx context.Context, text string) (string, error)
}

// TransformerFunc adapts a function to Transformer.
type TransformerFunc func(ctx context.Context, text string) (string, error)

func (f TransformerFunc) Transform(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

var (
	prefixes = []string{
		"Artisanal", "Haunted", "Gluten-Free", "Self-Aware", "Tactical",
		"Organic Free-Range", "Slightly Used", "Premium Imaginary", "Bluetooth-Enabled", "Existential",
	}
	suffixes = []string{
		"(Emotional Support Edition)", "of Mild Regret", "for Ambitious Pigeons", "With Extra Vibes",
		"Deluxe", "Lite™", "As Seen On TV", "in a Trench Coat",
	}
)

// PhraseTransformer spins text into a silly product name. The same text
// always yields the same phrase.
type PhraseTransformer struct{}

func (PhraseTransformer) Transform(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(text)))
	sum := h.Sum32()

	prefix := prefixes[sum%uint32(len(prefixes))]
	suffix := suffixes[(sum/uint32(len(prefixes)))%uint32(len(suffixes))]
	return fmt.Sprintf("%s %s %s", prefix, titleCase(text), suffix), nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
