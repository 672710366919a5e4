package hh

import (
	"strconv"
	"strings"
)

const (
	noSalary       = "Не указана"
	noDescription  = "Отсутствует"
	noRequirements = "Отсутствуют"
	noSkills       = "Не указаны"
	noExperience   = "Нет опыта"
	anyExperience  = "Можно без опыта"
)

var markupStripper = strings.NewReplacer("<highlighttext>", "", "</highlighttext>", "", "*", "")

// FormatSalary renders the salary fork the way it is shown to users,
// e.g. "от 1000 до 2000 рублей". Zero bounds count as absent.
func FormatSalary(s *Salary) string {
	if s == nil {
		return noSalary
	}
	var b strings.Builder
	if s.From != nil && *s.From != 0 {
		b.WriteString("от ")
		b.WriteString(strconv.FormatInt(*s.From, 10))
		b.WriteString(" ")
	}
	if s.To != nil && *s.To != 0 {
		b.WriteString("до ")
		b.WriteString(strconv.FormatInt(*s.To, 10))
		b.WriteString(" ")
	}
	b.WriteString(strings.ReplaceAll(s.Currency, "RUR", "рублей"))
	return b.String()
}

// SanitizeSnippets strips search highlighting from the snippet texts and
// substitutes placeholders for missing ones.
func SanitizeSnippets(description, requirements *string) (string, string) {
	desc, req := noDescription, noRequirements
	if description != nil {
		desc = markupStripper.Replace(*description)
	}
	if requirements != nil {
		req = markupStripper.Replace(*requirements)
	}
	return desc, req
}

func formatExperience(name string) string {
	if name == noExperience {
		return anyExperience
	}
	return name
}

func joinSkills(skills []namedRef) string {
	if len(skills) == 0 {
		return noSkills
	}
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}
