package api

// Schema names the JSON shape expected from one backend endpoint.
type Schema struct {
	// Name identifies the schema; compiled schemas are cached by name.
	Name string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// The backend serializes absent collections as null, so list fields accept
// both.
var (
	stringList = map[string]any{
		"type":  []any{"array", "null"},
		"items": map[string]any{"type": "string"},
	}

	questionDef = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":           map[string]any{"type": "integer"},
			"questionType": map[string]any{"type": []any{"string", "null"}},
			"questionText": map[string]any{"type": "string"},
			"options":      stringList,
		},
		"required": []any{"id", "questionText"},
	}

	domainDef = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":          map[string]any{"type": "integer"},
			"name":        map[string]any{"type": "string"},
			"description": map[string]any{"type": []any{"string", "null"}},
			"category":    map[string]any{"type": []any{"string", "null"}},
			"inProgress":  map[string]any{"type": "boolean"},
		},
		"required": []any{"id", "name"},
	}
)

// DomainsSchema validates GET /learning/domains/status.
var DomainsSchema = &Schema{
	Name: "domains-status",
	Definition: map[string]any{
		"type":  "array",
		"items": domainDef,
	},
}

// AssessmentQuestionsSchema validates GET /learning/domains/{id}/assessment-questions.
var AssessmentQuestionsSchema = &Schema{
	Name: "assessment-questions",
	Definition: map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":           map[string]any{"type": "integer"},
				"questionText": map[string]any{"type": "string"},
				"options":      stringList,
			},
			"required": []any{"id", "questionText"},
		},
	},
}

// LearningPathSchema validates POST /learning/domains/start.
var LearningPathSchema = &Schema{
	Name: "learning-path",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"domainName": map[string]any{"type": []any{"string", "null"}},
			"topics":     stringList,
		},
		"required": []any{"topics"},
	},
}

// InsightSchema validates GET /learning/domains/{id}/next-insight.
var InsightSchema = &Schema{
	Name: "insight",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":          map[string]any{"type": "integer"},
			"title":       map[string]any{"type": []any{"string", "null"}},
			"explanation": map[string]any{"type": []any{"string", "null"}},
			"completed":   map[string]any{"type": "boolean"},
			"questions": map[string]any{
				"type":  []any{"array", "null"},
				"items": questionDef,
			},
		},
		"required": []any{"id"},
	},
}

// FeedbackSchema validates POST /learning/insights/submit-answer.
var FeedbackSchema = &Schema{
	Name: "answer-feedback",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questionId":     map[string]any{"type": "integer"},
			"selectedAnswer": map[string]any{"type": []any{"string", "null"}},
			"correct":        map[string]any{"type": "boolean"},
			"correctAnswer":  map[string]any{"type": []any{"string", "null"}},
			"feedback":       map[string]any{"type": []any{"string", "null"}},
		},
		"required": []any{"questionId", "correct"},
	},
}

// TopicProgressSchema validates GET /learning/domains/{id}/progress.
var TopicProgressSchema = &Schema{
	Name: "topic-progress",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topicName":                      map[string]any{"type": []any{"string", "null"}},
			"level":                          map[string]any{"type": "integer", "minimum": 0},
			"completedInsightsCount":         map[string]any{"type": "integer", "minimum": 0},
			"totalInsightsInLevel":           map[string]any{"type": "integer", "minimum": 0},
			"totalGeneratedInsightsForTopic": map[string]any{"type": "integer", "minimum": 0},
			"reviewAvailable":                map[string]any{"type": "boolean"},
		},
		"required": []any{"completedInsightsCount"},
	},
}

// ReviewSchema validates GET /learning/domains/{id}/review.
var ReviewSchema = &Schema{
	Name: "review",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary":    map[string]any{"type": []any{"string", "null"}},
			"strengths":  stringList,
			"weaknesses": stringList,
			"revisionQuestions": map[string]any{
				"type":  []any{"array", "null"},
				"items": questionDef,
			},
		},
	},
}

// OverviewSchema validates GET /learning/domains/{id}/overview.
var OverviewSchema = &Schema{
	Name: "domain-overview",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"domainId":   map[string]any{"type": []any{"integer", "null"}},
			"domainName": map[string]any{"type": []any{"string", "null"}},
			"topics": map[string]any{
				"type": []any{"array", "null"},
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"topicName":         map[string]any{"type": "string"},
						"level":             map[string]any{"type": "integer"},
						"completedInsights": map[string]any{"type": "integer"},
						"requiredInsights":  map[string]any{"type": "integer"},
						"reviewAvailable":   map[string]any{"type": "boolean"},
						"unlocked":          map[string]any{"type": "boolean"},
						"current":           map[string]any{"type": "boolean"},
					},
					"required": []any{"topicName"},
				},
			},
		},
	},
}

// ProfileSchema validates GET /auth/me.
var ProfileSchema = &Schema{
	Name: "user-profile",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":                map[string]any{"type": "integer"},
			"username":          map[string]any{"type": "string"},
			"email":             map[string]any{"type": []any{"string", "null"}},
			"overallProgress":   map[string]any{"type": "number"},
			"domains":           map[string]any{"type": []any{"array", "null"}, "items": domainDef},
			"startedDomains":    map[string]any{"type": "integer"},
			"completedInsights": map[string]any{"type": "integer"},
		},
		"required": []any{"username"},
	},
}

// AuthTokenSchema validates POST /auth/login.
var AuthTokenSchema = &Schema{
	Name: "jwt-response",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"token":    map[string]any{"type": "string", "minLength": 1},
			"username": map[string]any{"type": []any{"string", "null"}},
			"roles":    stringList,
		},
		"required": []any{"token"},
	},
}

// UserSchema validates POST /auth/register.
var UserSchema = &Schema{
	Name: "user",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":       map[string]any{"type": "integer"},
			"username": map[string]any{"type": "string"},
			"email":    map[string]any{"type": []any{"string", "null"}},
		},
	},
}
