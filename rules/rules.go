//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// DetachedContext flags context.Background() in the analytics and storage
// layers. Every query and publish must honour the caller's cancellation.
func DetachedContext(m dsl.Matcher) {
	m.Match(`context.Background()`, `context.TODO()`).
		Where(m.File().PkgPath.Matches(`internal/(analytics|datastore|notification)$`) &&
			!m.File().Name.Matches(`_test\.go$`)).
		Report(`pass the caller's ctx instead of a detached context`)
}

// StdLogger flags the standard library logger outside main.
func StdLogger(m dsl.Matcher) {
	m.Import(`log`)
	m.Match(`log.Printf($*_)`, `log.Println($*_)`, `log.Print($*_)`, `log.Fatalf($*_)`).
		Where(m.File().PkgPath.Matches(`internal/`)).
		Report(`use logger.Global().Module(...) with typed fields`)
}

// EngineClock flags wall clock reads used as analysis anchors. Reports and
// insights are anchored on the engine clock so tests can pin time.
func EngineClock(m dsl.Matcher) {
	m.Match(`time.Now().AddDate($*_)`, `time.Now().Add($_)`, `time.Now().Truncate($_)`).
		Where(m.File().PkgPath.Matches(`internal/analytics$`)).
		Report(`use e.now() so the window follows the configured clock`)
}

// UnbuiltError flags enhanced errors that are returned without Build().
func UnbuiltError(m dsl.Matcher) {
	m.Match(`return $*_, errors.Newf($*_).Component($_).Category($_)`,
		`return errors.Newf($*_).Component($_).Category($_)`,
		`return $*_, errors.New($_).Component($_).Category($_)`,
		`return errors.New($_).Component($_).Category($_)`).
		Report(`finish the error chain with .Build()`)
}

// TimeDateTimeConstants suggests the named layouts for common date formats.
func TimeDateTimeConstants(m dsl.Matcher) {
	m.Match(`$t.Format("2006-01-02 15:04:05")`).
		Suggest(`$t.Format(time.DateTime)`).
		Report(`use time.DateTime instead of the layout literal`)

	m.Match(`$t.Format("2006-01-02")`).
		Suggest(`$t.Format(time.DateOnly)`).
		Report(`use time.DateOnly instead of the layout literal`)

	m.Match(`time.Parse("2006-01-02", $s)`).
		Suggest(`time.Parse(time.DateOnly, $s)`).
		Report(`use time.DateOnly instead of the layout literal`)

	m.Match(`time.ParseInLocation("2006-01-02", $s, $loc)`).
		Suggest(`time.ParseInLocation(time.DateOnly, $s, $loc)`).
		Report(`use time.DateOnly instead of the layout literal`)
}

// BenchmarkLoop suggests b.Loop() over the b.N counter loop.
func BenchmarkLoop(m dsl.Matcher) {
	m.Match(`for $i := 0; $i < $b.N; $i++ { $*body }`).
		Where(m["b"].Type.Is("*testing.B")).
		Report(`use for $b.Loop() { ... }`)

	m.Match(`for range $b.N { $*body }`).
		Where(m["b"].Type.Is("*testing.B")).
		Suggest(`for $b.Loop() { $body }`).
		Report(`use for $b.Loop() { ... }`)
}
