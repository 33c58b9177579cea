package config

// DefaultRules returns the schema of every key the service knows about.
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		KeyPort: {
			Kind:        KindNumber,
			Constraints: []Constraint{Min(0)},
			Description: "Port to listen on, by default a random port is used",
		},
		KeyLogLevel: {
			Kind:        KindString,
			Constraints: []Constraint{OneOf(LogLevels...)},
			Default:     DefaultLogLevel,
			Description: "Level of the logs. available levels are fatal, error, warn, info, debug and trace",
		},
		KeyDatabaseURL: {
			Kind:        KindURI,
			Constraints: []Constraint{Scheme("postgres")},
			Description: "Connection string to the main PostgreSQL database",
		},
		KeyOtherAPIURL: {
			Kind:        KindURI,
			Constraints: []Constraint{Scheme("https")},
			Default:     DefaultOtherAPIURL,
			Description: "API endpoint for the partner API",
		},
		KeyAdminClientID: {
			Kind:        KindString,
			Description: "Client ID to make requests on the partner API",
		},
		KeyAdminClientSecret: {
			Kind:        KindString,
			Description: "Client Secret to make requests on the partner API",
		},
		KeyFeatureFlipping: {
			Kind:        KindBoolean,
			Boolean:     FlagGrammar(),
			Default:     false,
			Description: "Allow flagging a feature as invalid",
		},
	}
}

// DefaultRegistry builds a fresh registry holding DefaultRules.
func DefaultRegistry() *Registry {
	return MustRegistry(DefaultRules())
}
