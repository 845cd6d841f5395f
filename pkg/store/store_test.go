package store

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock avança 1s a cada chamada.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func newTestStore() *Store {
	return New(nil, WithClock(tickingClock()))
}

func TestCreate_ThenFindAll(t *testing.T) {
	s := newTestStore()

	rec := s.Create("customers", Record{"firstName": "Ann", "lastName": "Lee", "email": "a@x.com"})

	assert.Regexp(t, regexp.MustCompile(`^CUST-\d{3}$`), rec.ID())

	all := s.FindAll("customers")
	var matches []Record
	for _, r := range all {
		if r.ID() == rec.ID() {
			matches = append(matches, r)
		}
	}
	require.Len(t, matches, 1)
	assert.NotEmpty(t, matches[0][FieldCreatedAt])
	assert.Equal(t, matches[0][FieldCreatedAt], matches[0][FieldUpdatedAt])
	assert.Equal(t, "Ann", matches[0]["firstName"])
}

func TestCreate_IDsStrictlyIncreasing(t *testing.T) {
	s := newTestStore()

	last := 0
	seen := make(map[string]bool)
	for i := 0; i < 25; i++ {
		rec := s.Create("policies", Record{"policyType": "auto"})
		id := rec.ID()
		require.True(t, strings.HasPrefix(id, "POL-"))
		assert.False(t, seen[id], "id repetido %s", id)
		seen[id] = true

		n, err := strconv.Atoi(strings.TrimPrefix(id, "POL-"))
		require.NoError(t, err)
		assert.Greater(t, n, last)
		last = n
	}
}

func TestCreate_OverridesIncomingID(t *testing.T) {
	s := newTestStore()
	rec := s.Create("claims", Record{"id": "hacked", "amount": 10})
	assert.Equal(t, "CLM-001", rec.ID())
}

func TestGenerateID_Prefixes(t *testing.T) {
	cases := map[string]string{
		"customers": "CUST-001",
		"policies":  "POL-001",
		"claims":    "CLM-001",
		"agents":    "AGT-001",
		"payments":  "PAY-001",
		"documents": "GEN-001",
	}
	for collection, want := range cases {
		assert.Equal(t, want, GenerateID(collection, 0), collection)
	}
	assert.Equal(t, "CUST-1000", GenerateID("customers", 999))
}

func TestGenerateID_ReuseAfterMiddleDelete(t *testing.T) {
	s := newTestStore()
	s.Create("agents", Record{"n": 1}) // AGT-001
	s.Create("agents", Record{"n": 2}) // AGT-002
	s.Create("agents", Record{"n": 3}) // AGT-003

	require.True(t, s.Delete("agents", "AGT-001"))
	rec := s.Create("agents", Record{"n": 4})

	// Tamanho voltou a 2, então o próximo id repete AGT-003.
	assert.Equal(t, "AGT-003", rec.ID())
}

func TestFindByID(t *testing.T) {
	s := newTestStore()
	created := s.Create("customers", Record{"firstName": "Ann"})

	assert.Equal(t, "Ann", s.FindByID("customers", created.ID())["firstName"])
	assert.Nil(t, s.FindByID("customers", "CUST-999"))
}

func TestReads_AreDefensiveCopies(t *testing.T) {
	s := newTestStore()
	created := s.Create("customers", Record{
		"firstName": "Ann",
		"address":   map[string]interface{}{"city": "Recife"},
	})

	created["firstName"] = "mutated"
	found := s.FindByID("customers", created.ID())
	found["address"].(map[string]interface{})["city"] = "mutated"

	all := s.FindAll("customers")
	all[0]["firstName"] = "mutated again"

	fresh := s.FindByID("customers", created.ID())
	assert.Equal(t, "Ann", fresh["firstName"])
	assert.Equal(t, "Recife", fresh["address"].(map[string]interface{})["city"])
}

func TestUpdate_RoundTrip(t *testing.T) {
	s := newTestStore()
	created := s.Create("policies", Record{"status": "pending", "premium": 1200.0, "policyType": "auto"})

	updated := s.Update("policies", created.ID(), Record{"status": "active", "premium": 1500.0})
	require.NotNil(t, updated)

	found := s.FindByID("policies", created.ID())
	assert.Equal(t, "active", found["status"])
	assert.Equal(t, 1500.0, found["premium"])
	assert.Equal(t, "auto", found["policyType"])
	assert.Equal(t, created[FieldCreatedAt], found[FieldCreatedAt])
	assert.Greater(t, found[FieldUpdatedAt].(string), created[FieldUpdatedAt].(string))
}

func TestUpdate_KeepsIdentity(t *testing.T) {
	s := newTestStore()
	created := s.Create("customers", Record{"firstName": "Ann"})

	updated := s.Update("customers", created.ID(), Record{"id": "OTHER", "createdAt": "x"})
	assert.Equal(t, created.ID(), updated.ID())
	assert.Equal(t, created[FieldCreatedAt], updated[FieldCreatedAt])
}

func TestUpdate_NotFound(t *testing.T) {
	s := newTestStore()
	assert.Nil(t, s.Update("customers", "CUST-404", Record{"a": 1}))
}

func TestDelete_SwapRemove(t *testing.T) {
	s := newTestStore()
	for i := 0; i < 4; i++ {
		s.Create("payments", Record{"n": i})
	}

	assert.True(t, s.Delete("payments", "PAY-002"))
	assert.False(t, s.Delete("payments", "PAY-002"))

	ids := make([]string, 0)
	for _, r := range s.FindAll("payments") {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []string{"PAY-001", "PAY-004", "PAY-003"}, ids)
}

func TestSearch(t *testing.T) {
	s := newTestStore()
	s.Create("customers", Record{"firstName": "Ann", "lastName": "Lee", "email": "ann@x.com"})
	s.Create("customers", Record{"firstName": "Bob", "lastName": "Annis", "email": "bob@y.com"})
	s.Create("customers", Record{"firstName": "Carl", "lastName": "Moe", "phone": 5551234})

	t.Run("case insensitive substring across fields", func(t *testing.T) {
		got := s.Search("customers", "ANN", []string{"firstName", "lastName"})
		assert.Len(t, got, 2)
	})

	t.Run("non string values are coerced", func(t *testing.T) {
		got := s.Search("customers", "555", []string{"phone"})
		require.Len(t, got, 1)
		assert.Equal(t, "Carl", got[0]["firstName"])
	})

	t.Run("empty query returns everything", func(t *testing.T) {
		assert.Len(t, s.Search("customers", "", []string{"firstName"}), 3)
	})

	t.Run("no match returns empty", func(t *testing.T) {
		assert.Empty(t, s.Search("customers", "zzz", []string{"firstName"}))
	})

	t.Run("whitespace is part of the query", func(t *testing.T) {
		assert.Empty(t, s.Search("customers", " ", []string{"firstName", "lastName"}))
		assert.Empty(t, s.Search("customers", " ann", []string{"firstName", "lastName"}))

		s.Create("customers", Record{"firstName": "Mary Ann", "lastName": "Poe"})
		got := s.Search("customers", " ann", []string{"firstName", "lastName"})
		require.Len(t, got, 1)
		assert.Equal(t, "Mary Ann", got[0]["firstName"])
	})
}

func TestFilter(t *testing.T) {
	s := newTestStore()
	s.Create("policies", Record{"status": "active", "policyType": "auto", "term": 12})
	s.Create("policies", Record{"status": "active", "policyType": "home", "term": 24.0})
	s.Create("policies", Record{"status": "expired", "policyType": "auto"})

	assert.Len(t, s.Filter("policies", map[string]interface{}{"status": "active"}), 2)
	assert.Len(t, s.Filter("policies", map[string]interface{}{"status": "active", "policyType": "auto"}), 1)
	assert.Len(t, s.Filter("policies", map[string]interface{}{"status": nil, "policyType": "auto"}), 2)
	assert.Len(t, s.Filter("policies", map[string]interface{}{"term": 12.0}), 1)
	assert.Len(t, s.Filter("policies", map[string]interface{}{"term": 24}), 1)
	assert.Empty(t, s.Filter("policies", map[string]interface{}{"missing": "x"}))
}

func TestFilter_EmptyEqualsFindAll(t *testing.T) {
	s := newTestStore()
	for i := 0; i < 5; i++ {
		s.Create("claims", Record{"n": i})
	}
	assert.Equal(t, s.FindAll("claims"), s.Filter("claims", map[string]interface{}{}))
}

func TestUnknownCollection_Panics(t *testing.T) {
	s := newTestStore()
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*UnknownCollectionError)
		require.True(t, ok)
		assert.Equal(t, "widgets", err.Name)
	}()
	s.FindAll("widgets")
}

func TestSeed(t *testing.T) {
	s := newTestStore()
	s.Create("customers", Record{"firstName": "temp"})

	s.Seed("customers", []Record{{"id": "CUST-001", "firstName": "Ann"}, {"id": "CUST-002", "firstName": "Bob"}})

	assert.Equal(t, 2, s.Count("customers"))
	assert.Equal(t, "CUST-003", s.Create("customers", Record{}).ID())
}

func TestConcurrentCreates_DistinctIDs(t *testing.T) {
	s := New(nil)
	var wg sync.WaitGroup
	ids := make(chan string, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids <- s.Create("customers", Record{"n": i}).ID()
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], fmt.Sprintf("id repetido %s", id))
		seen[id] = true
	}
	assert.Len(t, seen, 100)
}
