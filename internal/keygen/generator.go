package keygen

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const (
	Alphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	GroupSize  = 4
	GroupCount = 4
	Separator  = "-"
)

type KeyGenerator interface {
	Generate() (string, error)
}

type generator struct {
	random io.Reader
}

// NewGenerator - генератор на crypto/rand
func NewGenerator() KeyGenerator {
	return &generator{random: rand.Reader}
}

// NewGeneratorFrom позволяет подменить источник случайности (тесты, воспроизводимость)
func NewGeneratorFrom(random io.Reader) KeyGenerator {
	return &generator{random: random}
}

// Generate возвращает ключ вида XXXX-XXXX-XXXX-XXXX.
// Проверки на коллизии нет.
func (g *generator) Generate() (string, error) {
	alphabetLen := big.NewInt(int64(len(Alphabet)))

	var sb strings.Builder
	sb.Grow(GroupSize*GroupCount + GroupCount - 1)

	for i := 0; i < GroupCount; i++ {
		if i > 0 {
			sb.WriteString(Separator)
		}
		for j := 0; j < GroupSize; j++ {
			n, err := rand.Int(g.random, alphabetLen)
			if err != nil {
				return "", fmt.Errorf("failed to read entropy: %w", err)
			}
			sb.WriteByte(Alphabet[n.Int64()])
		}
	}

	return sb.String(), nil
}
