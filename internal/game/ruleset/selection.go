package ruleset

import "errors"

// Race defines a playable race.
//
// Precondition: ID and Name must be non-empty after loading.
type Race struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Bonus       BonusDef `yaml:"bonus" json:"-"`
}

// Class defines a playable class.
//
// Precondition: ID and Name must be non-empty after loading.
type Class struct {
	ID            string   `yaml:"id" json:"id"`
	Name          string   `yaml:"name" json:"name"`
	Description   string   `yaml:"description" json:"description,omitempty"`
	Bonus         BonusDef `yaml:"bonus" json:"-"`
	StartingItems []string `yaml:"starting_items" json:"starting_items,omitempty"`
}

// Origin defines a character background. ChooseSkills > 0 lets the player pick
// that many skills for the origin bonus instead of the fixed one.
//
// Precondition: ID and Name must be non-empty after loading.
type Origin struct {
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Description  string   `yaml:"description" json:"description,omitempty"`
	Bonus        BonusDef `yaml:"bonus" json:"-"`
	ChooseSkills int      `yaml:"choose_skills" json:"choose_skills,omitempty"`
	Items        []string `yaml:"items" json:"items,omitempty"`
}

func validateHeader(id, name string) error {
	if id == "" {
		return errors.New("id must not be empty")
	}
	if name == "" {
		return errors.New("name must not be empty")
	}
	return nil
}

// LoadRaces reads all .yaml files in dir and parses each as a Race.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed races (may be empty slice) or a non-nil error.
func LoadRaces(dir string) ([]*Race, error) {
	return loadDir[Race](dir, "race")
}

// LoadClasses reads all .yaml files in dir and parses each as a Class.
func LoadClasses(dir string) ([]*Class, error) {
	return loadDir[Class](dir, "class")
}

// LoadOrigins reads all .yaml files in dir and parses each as an Origin.
func LoadOrigins(dir string) ([]*Origin, error) {
	return loadDir[Origin](dir, "origin")
}
