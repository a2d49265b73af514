package auth

import (
	"strings"

	"github.com/spec-kit/org-directory/internal/domain"
)

// OperatorDirectory is the fixed set of operators allowed to log in.
type OperatorDirectory struct {
	byEmail map[string]domain.Operator
}

// NewOperatorDirectory indexes operators by lowercased email. Later
// entries override earlier ones.
func NewOperatorDirectory(operators []domain.Operator) *OperatorDirectory {
	dir := &OperatorDirectory{byEmail: make(map[string]domain.Operator, len(operators))}
	for _, op := range operators {
		op.Email = strings.ToLower(strings.TrimSpace(op.Email))
		dir.byEmail[op.Email] = op
	}
	return dir
}

// Lookup finds an operator by email, case-insensitively.
func (d *OperatorDirectory) Lookup(email string) (domain.Operator, bool) {
	if d == nil {
		return domain.Operator{}, false
	}
	op, ok := d.byEmail[strings.ToLower(strings.TrimSpace(email))]
	return op, ok
}

func (d *OperatorDirectory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.byEmail)
}
