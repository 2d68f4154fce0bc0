package movie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTMDBPeopleFromCredits(t *testing.T) {
	details := map[string]any{
		"credits": map[string]any{
			"crew": []any{
				map[string]any{"job": "Director", "name": "Christopher Nolan"},
				map[string]any{"job": "Co-Director", "name": "Jane Doe"},
				map[string]any{"job": "Assistant Director", "name": "Skip Me"},
				map[string]any{"job": "Casting Director", "name": "Skip Me Too"},
			},
			"cast": []any{
				map[string]any{"name": "Matthew McConaughey"},
				map[string]any{"name": "Anne Hathaway"},
				map[string]any{"name": "Jessica Chastain"},
				map[string]any{"name": "Matthew McConaughey"},
			},
		},
	}

	assert.Equal(t, []string{"Christopher Nolan", "Jane Doe"}, extractTMDBDirectors(details))
	assert.Equal(t, []string{"Matthew McConaughey", "Anne Hathaway", "Jessica Chastain"}, extractTMDBCast(details))
}

func TestExtractKPPeopleByProfession(t *testing.T) {
	payload := map[string]any{
		"persons": []any{
			map[string]any{"name": "Дэвид Финчер", "profession": "режиссеры"},
			map[string]any{"name": "Brad Pitt", "enProfession": "actor"},
			map[string]any{"name": "Edward Norton", "enProfession": "actor"},
			map[string]any{"name": "Ignore Me", "profession": "продюсеры"},
			map[string]any{"name": "Voice Only", "enProfession": "voice_actor"},
		},
	}

	assert.Equal(t, []string{"Дэвид Финчер"}, extractKPPeople(payload, kpRoleDirector))
	assert.Equal(t, []string{"Brad Pitt", "Edward Norton"}, extractKPPeople(payload, kpRoleActor))
}

func TestAppendUniqueDeduplicatesCaseInsensitively(t *testing.T) {
	// 4 distinct-cased spellings of one name plus 2 unique names, cap 3:
	// exactly 3 entries, first-seen casing preserved.
	var names []string
	for _, name := range []string{"Jane Doe", "JANE DOE", "jane doe", "Jane DOE", "Alice", "Bob"} {
		names = appendUnique(names, name, 3)
	}
	assert.Equal(t, []string{"Jane Doe", "Alice", "Bob"}, names)
}

func TestAppendUniqueSkipsBlankNames(t *testing.T) {
	names := appendUnique(nil, "   ", 3)
	assert.Empty(t, names)
}

func TestDirectorJob(t *testing.T) {
	assert.True(t, directorJob("Director"))
	assert.True(t, directorJob("Co-Director"))
	assert.False(t, directorJob("Assistant Director"))
	assert.False(t, directorJob("Casting Director"))
	assert.False(t, directorJob("Producer"))
}

func TestExtractKPPeopleRespectsCaps(t *testing.T) {
	persons := make([]any, 0, 10)
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		persons = append(persons, map[string]any{"name": name, "enProfession": "actor"})
	}
	payload := map[string]any{"persons": persons}

	cast := extractKPPeople(payload, kpRoleActor)
	assert.Len(t, cast, MaxCast)
}
