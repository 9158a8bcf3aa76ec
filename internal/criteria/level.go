package criteria

import (
	"fmt"
	"strings"
)

// RoleLevel is the seniority of a role or candidate, ordered junior to lead.
type RoleLevel int

const (
	LevelJunior RoleLevel = iota + 1
	LevelMid
	LevelSenior
	LevelLead
)

var levelNames = map[RoleLevel]string{
	LevelJunior: "junior",
	LevelMid:    "mid",
	LevelSenior: "senior",
	LevelLead:   "lead",
}

func (l RoleLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

func ParseRoleLevel(s string) (RoleLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return 0, fmt.Errorf("unknown role level %q", s)
}

func (l RoleLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *RoleLevel) UnmarshalText(text []byte) error {
	level, err := ParseRoleLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}
