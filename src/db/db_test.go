package db

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPaths(t *testing.T) {
	type CustomString string
	type S struct {
		I  int           `db:"I"`
		PI *int          `db:"PI"`
		CS CustomString  `db:"CS"`
		PC *CustomString `db:"PC"`
		B  bool          `db:"B"`
		PB *bool         `db:"PB"`

		NoTag int
	}
	type Nested struct {
		S  S  `db:"S"`
		PS *S `db:"PS"`

		NoTag S
	}

	names, paths := getColumnNamesAndPaths(reflect.TypeOf(Nested{}), nil, nil)
	assert.Equal(t, []columnName{
		{"S", "I"}, {"S", "PI"},
		{"S", "CS"}, {"S", "PC"},
		{"S", "B"}, {"S", "PB"},
		{"PS", "I"}, {"PS", "PI"},
		{"PS", "CS"}, {"PS", "PC"},
		{"PS", "B"}, {"PS", "PB"},
	}, names)
	assert.Equal(t, []fieldPath{
		{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5},
		{1, 0}, {1, 1}, {1, 2}, {1, 3}, {1, 4}, {1, 5},
	}, paths)
	assert.True(t, len(names) == len(paths))

	testStruct := Nested{}
	for i, path := range paths {
		val, field := followPathThroughStructs(reflect.ValueOf(&testStruct), path)
		assert.True(t, val.IsValid())
		assert.True(t, strings.Contains(strings.Join(names[i], "."), field.Name))
	}
}

func TestCompileQuery(t *testing.T) {
	t.Run("plain columns", func(t *testing.T) {
		type Dest struct {
			ID    uuid.UUID `db:"id"`
			Title string    `db:"title"`
		}
		compiled := compileQuery("SELECT $columns FROM article", reflect.TypeOf(Dest{}))
		assert.Equal(t, "SELECT id, title FROM article", compiled.query)
	})
	t.Run("prefixed columns", func(t *testing.T) {
		type Dest struct {
			ID    uuid.UUID `db:"id"`
			Title string    `db:"title"`
		}
		compiled := compileQuery("SELECT $columns{article} FROM article", reflect.TypeOf(Dest{}))
		assert.Equal(t, "SELECT article.id, article.title FROM article", compiled.query)
	})
	t.Run("non-struct dest with $columns panics", func(t *testing.T) {
		assert.Panics(t, func() {
			compileQuery("SELECT $columns FROM article", reflect.TypeOf(0))
		})
	})
}

func TestTypeIsQueryable(t *testing.T) {
	type ArticleStatus string
	assert.True(t, typeIsQueryable(reflect.TypeOf("")))
	assert.True(t, typeIsQueryable(reflect.TypeOf(ArticleStatus(""))))
	assert.True(t, typeIsQueryable(reflect.TypeOf(0)))
	assert.True(t, typeIsQueryable(reflect.TypeOf(false)))
	assert.True(t, typeIsQueryable(reflect.TypeOf(time.Time{})))
	assert.True(t, typeIsQueryable(reflect.TypeOf(uuid.UUID{})))
	assert.False(t, typeIsQueryable(reflect.TypeOf(struct{ A int }{})))
}

func TestQueryBuilder(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		var qb QueryBuilder
		qb.Add("SELECT stuff")
		qb.Add("FROM article")
		qb.Add("WHERE writer = $? AND status = ANY ($?)", "carlos", []string{"draft", "submitted"})
		qb.Add("AND visits > $?", 100)

		assert.Equal(t, "SELECT stuff\nFROM article\nWHERE writer = $1 AND status = ANY ($2)\nAND visits > $3\n", qb.String())
		assert.Equal(t, []interface{}{"carlos", []string{"draft", "submitted"}, 100}, qb.Args())
	})
	t.Run("too few arguments", func(t *testing.T) {
		assert.Panics(t, func() {
			var qb QueryBuilder
			qb.Add("HELLO $? $?", "there")
		})
	})
	t.Run("too many arguments", func(t *testing.T) {
		assert.Panics(t, func() {
			var qb QueryBuilder
			qb.Add("HELLO $?", "there", "doggy")
		})
	})
}
