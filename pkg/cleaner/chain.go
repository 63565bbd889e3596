package cleaner

import (
	"fmt"
	"strings"
)

// Chain applies cleaners in sequence, feeding each the previous output.
// An empty chain returns its input unchanged.
type Chain struct {
	cleaners []Cleaner
}

// NewChain creates a chain of the given cleaners, applied in order.
//
// Example:
//
//	chain := cleaner.NewChain(
//	    scrub.New(scrub.InvoiceConfig()),
//	    scrub.New(&scrub.Config{RemoveSelectors: []string{".promo"}}),
//	)
func NewChain(cleaners ...Cleaner) *Chain {
	return &Chain{cleaners: cleaners}
}

// Append adds a cleaner to the end of the chain.
func (c *Chain) Append(cl Cleaner) {
	c.cleaners = append(c.cleaners, cl)
}

// Len returns the number of cleaners in the chain.
func (c *Chain) Len() int {
	return len(c.cleaners)
}

// Clean runs every cleaner. The first error stops the chain and no output
// is returned.
func (c *Chain) Clean(html string) (string, error) {
	var err error
	for i, cl := range c.cleaners {
		html, err = cl.Clean(html)
		if err != nil {
			return "", fmt.Errorf("%s (step %d): %w", cl.Name(), i+1, err)
		}
	}
	return html, nil
}

// Name returns the names of all chained cleaners.
func (c *Chain) Name() string {
	names := make([]string, len(c.cleaners))
	for i, cl := range c.cleaners {
		names[i] = cl.Name()
	}
	return "chain(" + strings.Join(names, "->") + ")"
}
