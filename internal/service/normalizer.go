package service

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/vietanh2810/registration-api/internal/domain"
)

const Placeholder = "-"

// Alternate keys accepted for each member field, in lookup order.
var (
	memberSemesterKeys = []string{"semester"}
	memberProgramKeys  = []string{"program", "department"}
	memberRollKeys     = []string{"rollNumber", "roll"}
	memberNameKeys     = []string{"name", "fullName"}
	memberCollegeKeys  = []string{"college"}
)

// NormalizeTeamMembers turns whatever the client sent as a team roster into
// an ordered list of members. It never fails: malformed input degrades to
// comma splitting or placeholders. college fills in members that did not
// state their own.
func NormalizeTeamMembers(in domain.TeamMembersInput, college string) []domain.TeamMember {
	var items []any

	switch in.Kind {
	case domain.TeamMembersText:
		items = decodeMembersText(in.Text)
	case domain.TeamMembersList:
		items = in.Items
	default:
		return []domain.TeamMember{}
	}

	members := make([]domain.TeamMember, 0, len(items))
	for _, item := range items {
		members = append(members, coerceMember(item, college))
	}

	return members
}

func decodeMembersText(text string) []any {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil || dec.More() {
		return splitNames(text)
	}

	switch v := decoded.(type) {
	case []any:
		return v
	case map[string]any:
		return []any{v}
	case string:
		return splitNames(v)
	case nil:
		return nil
	default:
		return splitNames(text)
	}
}

func splitNames(text string) []any {
	var items []any
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, map[string]any{"name": part})
		}
	}

	return items
}

func coerceMember(item any, college string) domain.TeamMember {
	var fields map[string]any

	switch v := item.(type) {
	case map[string]any:
		fields = v
	case nil:
		fields = map[string]any{}
	default:
		fields = map[string]any{"name": v}
	}

	member := domain.TeamMember{
		Semester:   lookup(fields, memberSemesterKeys),
		Program:    lookup(fields, memberProgramKeys),
		RollNumber: lookup(fields, memberRollKeys),
		Name:       lookup(fields, memberNameKeys),
		College:    lookup(fields, memberCollegeKeys),
	}

	if member.College == "" {
		member.College = strings.TrimSpace(college)
	}

	member.Semester = orPlaceholder(member.Semester)
	member.Program = orPlaceholder(member.Program)
	member.RollNumber = orPlaceholder(member.RollNumber)
	member.Name = orPlaceholder(member.Name)
	member.College = orPlaceholder(member.College)

	return member
}

// lookup returns the first non-blank value among keys.
func lookup(fields map[string]any, keys []string) string {
	for _, key := range keys {
		if s := stringify(fields[key]); s != "" {
			return s
		}
	}

	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		if t {
			return "true"
		}
		return ""
	default:
		return ""
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}

	return s
}

// FormatTeamMembers renders one member per line as
// "semester | program | rollNumber | name | college".
func FormatTeamMembers(members []domain.TeamMember) string {
	if len(members) == 0 {
		return Placeholder
	}

	var buf bytes.Buffer
	for i, m := range members {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(strings.Join([]string{m.Semester, m.Program, m.RollNumber, m.Name, m.College}, " | "))
	}

	return buf.String()
}
