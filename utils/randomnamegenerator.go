package utils

import (
	"fmt"
	"math/rand"

	"github.com/Pallinder/go-randomdata"
)

const maxNameAttempts = 64

// NameGenerator hands out unique human readable names, deterministic for a seed.
type NameGenerator struct {
	used map[string]struct{}
}

func NewNameGenerator(seed int64) *NameGenerator {
	randomdata.CustomRand(rand.New(rand.NewSource(seed)))
	return &NameGenerator{used: make(map[string]struct{})}
}

func (g *NameGenerator) Name() string {
	name := randomdata.SillyName()
	for i := 0; i < maxNameAttempts; i++ {
		// avoid duplicate names
		if _, exists := g.used[name]; !exists {
			break
		}
		name = randomdata.SillyName()
	}
	if _, exists := g.used[name]; exists {
		name = fmt.Sprintf("%s%d", name, len(g.used))
	}
	g.used[name] = struct{}{}
	return name
}
