// Package profile describes the event a dashboard instance monitors: the two
// sides, the sportsbooks to shop, the searches the model should run and where
// it should pretend to search from.
package profile

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hetulpatel/LiveEdge/internal/models"
)

//go:embed default.yaml
var defaultYAML []byte

type Profile struct {
	Event            string        `yaml:"event"`
	Sides            []models.Side `yaml:"sides"`
	Books            []Book        `yaml:"books"`
	Searches         []string      `yaml:"searches"`
	Location         Location      `yaml:"location"`
	Stats            []string      `yaml:"stats"`
	RefreshIntervals []int         `yaml:"refresh_intervals"`
}

type Book struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Location is the approximate searcher location handed to web search.
type Location struct {
	City     string `yaml:"city"`
	Region   string `yaml:"region"`
	Country  string `yaml:"country"`
	Timezone string `yaml:"timezone"`
}

// Default returns the embedded Super Bowl LX profile.
func Default() *Profile {
	p, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("profile: embedded default is invalid: %v", err))
	}
	return p
}

// Load reads a profile from path. An empty path yields the default.
func Load(path string) (*Profile, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: read %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile: parse yaml: %w", err)
	}
	if len(p.RefreshIntervals) == 0 {
		p.RefreshIntervals = []int{30, 60, 90, 120}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) Validate() error {
	if len(p.Sides) != 2 {
		return fmt.Errorf("profile: exactly two sides required, got %d", len(p.Sides))
	}
	for i, s := range p.Sides {
		if strings.TrimSpace(s.Code) == "" {
			return fmt.Errorf("profile: side %d has no code", i)
		}
	}
	if strings.EqualFold(p.Sides[0].Code, p.Sides[1].Code) {
		return fmt.Errorf("profile: side codes must differ (%s)", p.Sides[0].Code)
	}
	if len(p.Books) == 0 {
		return fmt.Errorf("profile: at least one book required")
	}
	for _, b := range p.Books {
		if strings.TrimSpace(b.ID) == "" {
			return fmt.Errorf("profile: book %q has no id", b.Name)
		}
	}
	for _, sec := range p.RefreshIntervals {
		if sec <= 0 {
			return fmt.Errorf("profile: refresh interval must be positive, got %d", sec)
		}
	}
	return nil
}

// BookIDs returns the configured book ids in order.
func (p *Profile) BookIDs() []string {
	ids := make([]string, 0, len(p.Books))
	for _, b := range p.Books {
		ids = append(ids, b.ID)
	}
	return ids
}

// AllowsInterval reports whether d is one of the configured refresh intervals.
func (p *Profile) AllowsInterval(d time.Duration) bool {
	for _, sec := range p.RefreshIntervals {
		if time.Duration(sec)*time.Second == d {
			return true
		}
	}
	return false
}

// MinInterval returns the shortest configured refresh interval.
func (p *Profile) MinInterval() time.Duration {
	var shortest time.Duration
	for _, sec := range p.RefreshIntervals {
		d := time.Duration(sec) * time.Second
		if shortest == 0 || d < shortest {
			shortest = d
		}
	}
	return shortest
}
