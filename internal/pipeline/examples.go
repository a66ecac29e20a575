package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Brownie44l1/saliency/internal/model"
)

// LoadExamples reads a JSON array of example identifiers.
func LoadExamples(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read examples list: %w", err)
	}

	var examples []string
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("failed to parse examples list %s: %w", path, err)
	}
	return examples, nil
}

// Output roles, one PNG each per example.
const (
	RoleBase     = "base"
	RoleNormal   = "x_0"
	RoleAbnormal = "x_1"
	RoleCombined = "attribution"
	// RoleCombinedLegacy is the suffix earlier result sets were written with.
	RoleCombinedLegacy = "attriution"
)

// ResultName is the common stem of an example's artifacts: the identifier
// followed by both raw scores to two decimals.
func ResultName(id string, scores model.Scores) string {
	return fmt.Sprintf("%s[%.2f,%.2f]", id, scores[0], scores[1])
}

func Roles(legacy bool) []string {
	combined := RoleCombined
	if legacy {
		combined = RoleCombinedLegacy
	}
	return []string{RoleBase, RoleNormal, RoleAbnormal, combined}
}
