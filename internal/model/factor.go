package model

// CategoryKey identifies one of the four scoring categories
type CategoryKey string

const (
	CategoryBuild    CategoryKey = "build"
	CategoryThrive   CategoryKey = "thrive"
	CategorySustain  CategoryKey = "sustain"
	CategoryKeystone CategoryKey = "keystone"
)

// CategoryKeys lists categories in report order
var CategoryKeys = []CategoryKey{CategoryBuild, CategoryThrive, CategorySustain, CategoryKeystone}

// Factor is one scored dimension of the taxonomy
type Factor struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description"`
	Weight      float64    `yaml:"weight" json:"weight"`
	Keywords    []string   `yaml:"keywords" json:"keywords"`
	Override    string     `yaml:"override_attribute,omitempty" json:"override_attribute,omitempty"` // keystone only
	NameFloor   *NameFloor `yaml:"name_floor,omitempty" json:"name_floor,omitempty"`                 // build only
}

// NameFloor raises a factor score when the entity name matches a pattern
type NameFloor struct {
	Value    int      `yaml:"value" json:"value"`
	Patterns []string `yaml:"patterns" json:"patterns"`
}

// Category groups weighted factors
type Category struct {
	Key     CategoryKey `yaml:"key" json:"key"`
	Name    string      `yaml:"name" json:"name"`
	Weight  float64     `yaml:"weight" json:"weight"`
	Factors []Factor    `yaml:"factors" json:"factors"`
}

// AttributePatterns holds the regular expressions used to derive Attributes
type AttributePatterns struct {
	Locale           string `yaml:"locale" json:"locale"`
	PartnerName      string `yaml:"partner_name" json:"partner_name"`
	PartnerIndicator string `yaml:"partner_indicator" json:"partner_indicator"`
	Alliance         string `yaml:"alliance" json:"alliance"`
}
