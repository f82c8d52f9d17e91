package sweep

import (
	"fmt"

	"github.com/spboyer/hetsird/internal/models"
)

// Expand returns one copy of base per value, with param set through the
// override mechanism. Each copy is named "<base>[param=value]".
func Expand(base *models.Scenario, param string, values []string) ([]*models.Scenario, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("sweep over %q needs at least one value", param)
	}
	out := make([]*models.Scenario, 0, len(values))
	for _, v := range values {
		overrides, err := models.ParseOverrides([]string{param + "=" + v})
		if err != nil {
			return nil, err
		}
		sc := base.Clone()
		if err := models.ApplyOverrides(sc, overrides); err != nil {
			return nil, fmt.Errorf("%s=%s: %w", param, v, err)
		}
		sc.Name = fmt.Sprintf("%s[%s=%s]", base.Name, param, v)
		out = append(out, sc)
	}
	return out, nil
}
