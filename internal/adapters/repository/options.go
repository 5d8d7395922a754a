package repository

// CSVOption applies a configuration option to the CSVSource.
type CSVOption func(*CSVSource)

// WithTeamRowsOnly keeps only rows whose position column is "team" when the
// file carries player rows too. Enabled by default.
func WithTeamRowsOnly(only bool) CSVOption {
	return func(s *CSVSource) {
		s.teamRowsOnly = only
	}
}

// WithLeagues keeps only the listed leagues. Empty keeps all.
func WithLeagues(leagues ...string) CSVOption {
	return func(s *CSVSource) {
		if len(leagues) > 0 {
			s.leagues = make(map[string]struct{}, len(leagues))
			for _, l := range leagues {
				s.leagues[l] = struct{}{}
			}
		}
	}
}

// PostgresOption applies a configuration option to the PostgresSource.
type PostgresOption func(*PostgresSource)

// WithTable sets the table name holding match rows.
func WithTable(name string) PostgresOption {
	return func(s *PostgresSource) {
		if name != "" {
			s.table = name
		}
	}
}
