package viewmodel

import "strings"

type Role string

const (
	RoleActor           Role = "actor"
	RoleDirector        Role = "director"
	RoleProducer        Role = "producer"
	RoleWriter          Role = "writer"
	RoleCinematographer Role = "cinematographer"
	RoleComposer        Role = "composer"
)

// RoleRule maps a crew entry to Role when its job contains any of Jobs or its
// department contains any of Departments. Matching is case-insensitive.
type RoleRule struct {
	Role        Role
	Jobs        []string
	Departments []string
}

func (r RoleRule) matches(job, department string) bool {
	job = strings.ToLower(job)
	department = strings.ToLower(department)
	for _, k := range r.Jobs {
		if job != "" && strings.Contains(job, k) {
			return true
		}
	}
	for _, k := range r.Departments {
		if department != "" && strings.Contains(department, k) {
			return true
		}
	}
	return false
}

// DefaultRoleRules is checked in order and the first match wins.
// Cinematography sits ahead of director so "Director of Photography" is not a director.
var DefaultRoleRules = []RoleRule{
	{Role: RoleCinematographer, Jobs: []string{"director of photography", "cinematography"}},
	{Role: RoleDirector, Jobs: []string{"director"}},
	{Role: RoleProducer, Jobs: []string{"producer"}},
	{Role: RoleWriter, Jobs: []string{"screenplay", "writer"}, Departments: []string{"writing"}},
	{Role: RoleComposer, Jobs: []string{"music", "composer"}, Departments: []string{"sound"}},
}

// Classify returns the role of the first rule matching job or department.
// ok is false when no rule matches.
func Classify(rules []RoleRule, job, department string) (Role, bool) {
	for _, r := range rules {
		if r.matches(job, department) {
			return r.Role, true
		}
	}
	return "", false
}
