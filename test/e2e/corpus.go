// Package e2e holds end-to-end tests over a synthetic vocabulary whose
// geometry makes every analogy, mix and line query answerable by hand.
package e2e

import (
	"fmt"
	"math"
	"math/rand"
)

// Triplet is a gendered word pair plus a neutral word that sits between them.
type Triplet struct {
	Male    string
	Female  string
	Neutral string
}

// Triplets are laid out on their own axis each; dimension 0 carries gender.
var Triplets = []Triplet{
	{"king", "queen", "monarch"},
	{"man", "woman", "person"},
	{"boy", "girl", "child"},
	{"father", "mother", "parent"},
	{"brother", "sister", "sibling"},
	{"uncle", "aunt", "relative"},
	{"husband", "wife", "spouse"},
	{"prince", "princess", "heir"},
	{"actor", "actress", "performer"},
	{"nephew", "niece", "cousin"},
}

const (
	// FillerDims is the number of dimensions reserved for filler words.
	FillerDims = 12

	genderDim  = 0
	neutralDim = 11 // after the 10 triplet axes
	identScale = 3
	neutralOff = 0.5
)

// Dimensions is the vector size of the synthetic vocabulary.
const Dimensions = neutralDim + 1 + FillerDims

// Vocabulary is a word list with aligned unit vectors.
type Vocabulary struct {
	Words   []string
	Vectors [][]float32
}

// AnalogyCase is a:b :: c:Want.
type AnalogyCase struct {
	A, B, C string
	Want    string
}

// Name is a readable subtest name.
func (c AnalogyCase) Name() string {
	return fmt.Sprintf("%s:%s::%s:%s", c.A, c.B, c.C, c.Want)
}

// BuildVocabulary returns the triplet words followed by filler words drawn
// from a seeded source. Every vector has unit length. Filler vectors live in
// dimensions no triplet uses, so they never outrank triplet answers.
func BuildVocabulary(fillers int, seed int64) *Vocabulary {
	v := &Vocabulary{}
	for i, t := range Triplets {
		axis := 1 + i
		male := make([]float32, Dimensions)
		male[genderDim] = 1
		male[axis] = identScale
		female := make([]float32, Dimensions)
		female[genderDim] = -1
		female[axis] = identScale
		neutral := make([]float32, Dimensions)
		neutral[axis] = identScale
		neutral[neutralDim] = neutralOff
		v.add(t.Male, male)
		v.add(t.Female, female)
		v.add(t.Neutral, neutral)
	}

	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < fillers; i++ {
		vec := make([]float32, Dimensions)
		for d := Dimensions - FillerDims; d < Dimensions; d++ {
			vec[d] = rng.Float32() + 0.01
		}
		v.add(fmt.Sprintf("filler%05d", i), vec)
	}
	return v
}

func (v *Vocabulary) add(word string, vec []float32) {
	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	n := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= n
	}
	v.Words = append(v.Words, word)
	v.Vectors = append(v.Vectors, vec)
}

// Vector returns the vector of word, or nil.
func (v *Vocabulary) Vector(word string) []float32 {
	for i, w := range v.Words {
		if w == word {
			return v.Vectors[i]
		}
	}
	return nil
}

// AnalogyCases pairs every two distinct triplets in both gender directions.
func AnalogyCases() []AnalogyCase {
	var cases []AnalogyCase
	for i, a := range Triplets {
		for j, c := range Triplets {
			if i == j {
				continue
			}
			cases = append(cases,
				AnalogyCase{A: a.Male, B: a.Female, C: c.Male, Want: c.Female},
				AnalogyCase{A: a.Female, B: a.Male, C: c.Female, Want: c.Male},
			)
		}
	}
	return cases
}
