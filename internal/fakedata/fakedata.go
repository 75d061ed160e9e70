// Package fakedata is the synthetic-data source for a generation run. All
// randomness and uniqueness tracking lives in a State value so two runs never
// share hidden global state and a seed reproduces a dataset.
package fakedata

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxEmailAttempts bounds retries before falling back to a sequence suffix.
const maxEmailAttempts = 20

// State carries the random source and uniqueness bookkeeping of one run.
// It is not safe for concurrent use; a run is sequential.
type State struct {
	faker  *gofakeit.Faker
	seed   uint64
	runTag string
	emails map[string]struct{}
	seq    int
}

// New returns a State seeded with seed. A zero seed picks one from the clock;
// Seed reports the value actually used. The run tag embedded in customer
// emails is random per State, so two runs with the same seed never collide
// on the unique email index.
func New(seed uint64) *State {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	s := &State{
		faker:  gofakeit.New(seed),
		seed:   seed,
		emails: make(map[string]struct{}),
	}
	s.runTag = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return s
}

// Seed returns the seed the state was created with.
func (s *State) Seed() uint64 {
	return s.seed
}

// IntRange returns a uniform int in [min, max].
func (s *State) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return s.faker.Number(min, max)
}

// FloatRange returns a uniform float64 in [min, max].
func (s *State) FloatRange(min, max float64) float64 {
	return s.faker.Float64Range(min, max)
}

// Chance returns true with probability p.
func (s *State) Chance(p float64) bool {
	return s.faker.Float64Range(0, 1) < p
}

// Bool returns a fair coin flip.
func (s *State) Bool() bool {
	return s.faker.Bool()
}

// Amount returns a uniform value in [min, max] rounded to 2 decimals.
func (s *State) Amount(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(s.FloatRange(min, max)).Round(2)
}

// Between returns a uniform instant in [start, end].
func (s *State) Between(start, end time.Time) time.Time {
	if !end.After(start) {
		return start
	}
	return s.faker.DateRange(start, end)
}

// Pick returns a uniformly chosen element of pool. pool must not be empty.
func Pick[T any](s *State, pool []T) T {
	return pool[s.IntRange(0, len(pool)-1)]
}

// Sample returns k distinct elements of pool chosen without replacement.
// k is capped at len(pool). pool itself is left untouched.
func Sample[T any](s *State, pool []T, k int) []T {
	if k > len(pool) {
		k = len(pool)
	}
	if k <= 0 {
		return nil
	}
	shuffled := make([]T, len(pool))
	copy(shuffled, pool)
	for i := 0; i < k; i++ {
		j := s.IntRange(i, len(shuffled)-1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:k]
}

func (s *State) FirstName() string { return s.faker.FirstName() }
func (s *State) LastName() string  { return s.faker.LastName() }
func (s *State) Company() string   { return s.faker.Company() }
func (s *State) Country() string   { return s.faker.Country() }
func (s *State) City() string      { return s.faker.City() }
func (s *State) Phone() string     { return s.faker.Phone() }

// RunTag returns the per-State tag that keeps emails of separate runs apart.
func (s *State) RunTag() string {
	return s.runTag
}

// CompanyEmail builds a contact address on a domain derived from company.
func (s *State) CompanyEmail(company string) string {
	domain := localPart(company)
	if domain == "" {
		domain = "company"
	}
	local := localPart(s.faker.FirstName())
	if local == "" {
		local = "contact"
	}
	return fmt.Sprintf("%s@%s.%s", local, domain, s.faker.DomainSuffix())
}

// UniqueEmail returns an address never handed out before by this state.
func (s *State) UniqueEmail(firstName, lastName string) string {
	local := localPart(firstName) + "." + localPart(lastName)
	if local == "." {
		local = "customer"
	}
	for attempt := 0; attempt < maxEmailAttempts; attempt++ {
		email := fmt.Sprintf("%s%d.%s@%s", local, s.IntRange(1, 9999), s.runTag, s.faker.DomainName())
		if s.claim(email) {
			return email
		}
	}
	for {
		s.seq++
		email := fmt.Sprintf("%s.%s%d@%s", local, s.runTag, s.seq, s.faker.DomainName())
		if s.claim(email) {
			return email
		}
	}
}

func (s *State) claim(email string) bool {
	if _, taken := s.emails[email]; taken {
		return false
	}
	s.emails[email] = struct{}{}
	return true
}

// Sentence returns a sentence of wordCount words.
func (s *State) Sentence(wordCount int) string {
	if wordCount < 1 {
		wordCount = 1
	}
	return s.faker.Sentence(wordCount)
}

// Paragraph returns three to six sentences.
func (s *State) Paragraph() string {
	return s.faker.Paragraph(1, s.IntRange(3, 6), s.IntRange(5, 12), " ")
}

// SKU returns a code shaped like SKU-ABCD-1234.
func (s *State) SKU() string {
	return "SKU-" + strings.ToUpper(s.faker.Lexify("????")) + "-" + s.faker.Numerify("####")
}

// localPart keeps the ASCII letters and digits of value, lowercased, so
// names like "O'Hara" fit an email address.
func localPart(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, value)
}
