package movie

import "strings"

// kpRole selects which Poiskkino persons to extract.
type kpRole string

const (
	kpRoleDirector kpRole = "director"
	kpRoleActor    kpRole = "actor"
)

// appendUnique adds name unless blank or already present case-insensitively.
// First-seen casing wins.
func appendUnique(names []string, name string, limit int) []string {
	name = strings.TrimSpace(name)
	if name == "" || len(names) >= limit {
		return names
	}
	lower := strings.ToLower(name)
	for _, existing := range names {
		if strings.ToLower(existing) == lower {
			return names
		}
	}
	return append(names, name)
}

// directorJob reports whether a TMDB crew job is a director credit.
// Assistant and casting-adjacent titles do not count.
func directorJob(job string) bool {
	lower := strings.ToLower(job)
	if !strings.Contains(lower, "director") {
		return false
	}
	if strings.Contains(lower, "assistant") || strings.Contains(lower, "casting") {
		return false
	}
	return true
}

// extractTMDBDirectors pulls up to MaxDirectors director names from the
// credits block of a TMDB detail payload.
func extractTMDBDirectors(details map[string]any) []string {
	credits := getMap(details, "credits")
	var names []string
	for _, raw := range getList(credits, "crew") {
		person, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if !directorJob(getString(person, "job")) {
			continue
		}
		names = appendUnique(names, getString(person, "name"), MaxDirectors)
	}
	return names
}

// extractTMDBCast pulls up to MaxCast top-billed names from the credits
// block of a TMDB detail payload.
func extractTMDBCast(details map[string]any) []string {
	credits := getMap(details, "credits")
	var names []string
	for _, raw := range getList(credits, "cast") {
		person, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		names = appendUnique(names, getString(person, "name"), MaxCast)
		if len(names) >= MaxCast {
			break
		}
	}
	return names
}

// extractKPPeople pulls names from a Poiskkino persons list by role, matching
// both the Russian profession label and the English enProfession tag.
// Dubbing and producing credits do not match either role.
func extractKPPeople(payload map[string]any, role kpRole) []string {
	limit := MaxCast
	ruProfession := "актеры"
	enProfession := "actor"
	if role == kpRoleDirector {
		limit = MaxDirectors
		ruProfession = "режиссеры"
		enProfession = "director"
	}

	var names []string
	for _, raw := range getList(payload, "persons") {
		person, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		ru := strings.ToLower(strings.TrimSpace(getString(person, "profession")))
		en := strings.ToLower(strings.TrimSpace(getString(person, "enProfession")))
		if ru != ruProfession && en != enProfession {
			continue
		}
		names = appendUnique(names, getString(person, "name"), limit)
		if len(names) >= limit {
			break
		}
	}
	return names
}
