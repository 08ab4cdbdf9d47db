package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solatis/rulequery/internal/core/auth"
	"github.com/solatis/rulequery/internal/core/db"
	"github.com/solatis/rulequery/internal/core/logging"
	"github.com/solatis/rulequery/internal/types"
)

const sampleTree = `{
  "condition": "AND",
  "rules": [
    {"field": "name", "operator": "contains", "value": "v"},
    {"field": "email", "operator": "is_null"}
  ]
}`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestTranslate_BoolFromStdin(t *testing.T) {
	out, err := execute(t, sampleTree, "translate", "--log-level", "error")
	require.NoError(t, err)
	assert.JSONEq(t, `{"bool": {
		"must": [{"wildcard": {"name": "*v*"}}],
		"must_not": [{"exists": {"field": "email"}}]
	}}`, out)
}

func TestTranslate_QueryStringFromFile(t *testing.T) {
	path := writeFile(t, "tree.json", sampleTree)

	out, err := execute(t, "", "translate", path, "--target", "querystring")
	require.NoError(t, err)
	assert.Equal(t, "name:v AND _missing_:email\n", out)
}

func TestTranslate_YAMLWithDefaultCondition(t *testing.T) {
	tree := `
rules:
  - field: a
    operator: contains
    value: x
  - field: b
    operator: contains
    value: "y"
`
	out, err := execute(t, tree, "translate", "-", "-t", "querystring", "--default-condition", "or")
	require.NoError(t, err)
	assert.Equal(t, "a:x OR b:y\n", out)
}

func TestTranslate_EmptyInputUsesRulesFile(t *testing.T) {
	path := writeFile(t, "default.json", `{"condition": "OR", "rules": [{"field": "status", "operator": "is_not_null"}]}`)

	out, err := execute(t, "  \n", "translate", "-t", "querystring", "--rules-file", path)
	require.NoError(t, err)
	assert.Equal(t, "_exists_:status\n", out)
}

func TestTranslate_EmptyInputWithoutRulesFile(t *testing.T) {
	out, err := execute(t, "", "translate")
	require.NoError(t, err)
	assert.JSONEq(t, `{"bool": {}}`, out)
}

func TestTranslate_ConfigTransforms(t *testing.T) {
	cfgPath := writeFile(t, "rulequery.yaml", `
translator:
  transforms:
    cents: "int(value) * 100"
`)
	tree := `{"condition": "AND", "rules": [
		{"field": "price", "operator": "less", "value": 5, "data": {"transform": "cents"}}
	]}`

	out, err := execute(t, tree, "translate", "--config", cfgPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bool": {"must": [{"range": {"price": {"lt": 500}}}]}}`, out)
}

func TestTranslate_MixedCaseTransformName(t *testing.T) {
	cfgPath := writeFile(t, "rulequery.yaml", `
translator:
  transforms:
    toCents: "value * 100"
`)
	tree := `{"condition": "AND", "rules": [
		{"field": "price", "operator": "less", "value": 5, "data": {"transform": "toCents"}}
	]}`

	out, err := execute(t, tree, "translate", "--config", cfgPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bool": {"must": [{"range": {"price": {"lt": 500}}}]}}`, out)
}

func TestTranslate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr error
		message string
	}{
		{
			name:    "invalid target",
			stdin:   sampleTree,
			args:    []string{"translate", "--target", "sql"},
			message: "invalid --target",
		},
		{
			name:    "too many rules",
			stdin:   sampleTree,
			args:    []string{"translate", "--max-rules", "1"},
			wantErr: types.ErrTooManyRules,
		},
		{
			name:    "unsupported query-string operator",
			stdin:   `{"condition": "AND", "rules": [{"field": "a", "operator": "equal", "value": 1}]}`,
			args:    []string{"translate", "-t", "querystring"},
			wantErr: types.ErrUnsupportedOperator,
		},
		{
			name:    "malformed input",
			stdin:   `{"condition": `,
			args:    []string{"translate"},
			wantErr: types.ErrInvalidRuleTree,
		},
		{
			name:    "missing file",
			args:    []string{"translate", "/nonexistent/tree.json"},
			message: "failed to read",
		},
		{
			name:    "invalid log level",
			stdin:   sampleTree,
			args:    []string{"translate", "--log-level", "loud"},
			message: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.stdin, tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
			assert.Empty(t, out)
		})
	}
}

func setSecret(t *testing.T) (string, []byte) {
	t.Helper()
	secretID := "00112233445566778899aabbccddeeff"
	secret := []byte("cli-test-secret-0123456789abcdef")
	t.Setenv("RQ_HMAC_SECRET", secretID+":"+base64.StdEncoding.EncodeToString(secret))
	return secretID, secret
}

var apiKeyLine = regexp.MustCompile(`api_key:\s+(\S+)`)
var keyIDLine = regexp.MustCompile(`api_key_id:\s+(\S+)`)

func TestKeysLifecycle(t *testing.T) {
	secretID, secret := setSecret(t)
	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "rq.db")

	_, err := execute(t, "", "keys", "list", "--db-url", dbURL)
	require.Error(t, err, "unmigrated database must be rejected")
	assert.Contains(t, err.Error(), "rulequery migrate")

	out, err := execute(t, "", "migrate", "--db-url", dbURL)
	require.NoError(t, err)
	assert.Contains(t, out, "applied 001_initial_schema.sql")

	out, err = execute(t, "", "migrate", "--db-url", dbURL)
	require.NoError(t, err)
	assert.Equal(t, "database is up to date\n", out)

	out, err = execute(t, "", "keys", "create", "--db-url", dbURL, "--client", "client-a", "--name", "ci")
	require.NoError(t, err)
	key := apiKeyLine.FindStringSubmatch(out)
	require.Len(t, key, 2, out)
	id := keyIDLine.FindStringSubmatch(out)
	require.Len(t, id, 2, out)

	// The printed key authenticates against the same database
	database, err := db.Open(dbURL)
	require.NoError(t, err)
	defer database.Close()
	queries, err := db.LoadQueries(database)
	require.NoError(t, err)
	authenticator := auth.NewAuthenticator(map[string][]byte{secretID: secret}, queries, logging.Discard())
	clientID, err := authenticator.Authenticate(context.Background(), key[1])
	require.NoError(t, err)
	assert.Equal(t, types.ClientID("client-a"), clientID)

	out, err = execute(t, "", "keys", "list", "--db-url", dbURL)
	require.NoError(t, err)
	assert.Contains(t, out, id[1])
	assert.Contains(t, out, "client-a")
	assert.NotContains(t, out, key[1], "list must never print key material")

	out, err = execute(t, "", "keys", "revoke", id[1], "--db-url", dbURL)
	require.NoError(t, err)
	assert.Equal(t, "revoked "+id[1]+"\n", out)

	_, err = execute(t, "", "keys", "revoke", id[1], "--db-url", dbURL)
	assert.Error(t, err)

	_, err = authenticator.Authenticate(context.Background(), key[1])
	assert.ErrorIs(t, err, auth.ErrKeyRevoked)
}

func TestMigrateStatus(t *testing.T) {
	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "rq.db")

	out, err := execute(t, "", "migrate", "status", "--db-url", dbURL)
	require.NoError(t, err)
	assert.Regexp(t, `001_initial_schema\.sql\s+pending`, out)

	_, err = execute(t, "", "migrate", "--db-url", dbURL)
	require.NoError(t, err)

	out, err = execute(t, "", "migrate", "status", "--db-url", dbURL)
	require.NoError(t, err)
	assert.Regexp(t, `001_initial_schema\.sql\s+applied`, out)
}

func TestHistory(t *testing.T) {
	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "rq.db")
	_, err := execute(t, "", "migrate", "--db-url", dbURL)
	require.NoError(t, err)

	database, err := db.Open(dbURL)
	require.NoError(t, err)
	queries, err := db.LoadQueries(database)
	require.NoError(t, err)
	require.NoError(t, queries.InsertTranslation(context.Background(), db.Translation{
		ID:           string(types.NewTranslationID()),
		ClientID:     "client-a",
		Kind:         db.KindQueryString,
		Status:       db.StatusRejected,
		ErrorMessage: "unsupported operator",
		LeafCount:    3,
		DurationUs:   1500,
		CreatedAt:    time.Now(),
	}))
	database.Close()

	out, err := execute(t, "", "history", "--client", "client-a", "--db-url", dbURL)
	require.NoError(t, err)
	assert.Contains(t, out, "querystring")
	assert.Contains(t, out, "rejected")
	assert.Contains(t, out, "1.5ms")
	assert.Contains(t, out, "unsupported operator")

	out, err = execute(t, "", "history", "--client", "client-b", "--db-url", dbURL)
	require.NoError(t, err)
	assert.NotContains(t, out, "querystring")

	_, err = execute(t, "", "history", "--client", "client-a", "--limit", "0", "--db-url", dbURL)
	assert.Error(t, err)
}

func TestServe_InvalidPort(t *testing.T) {
	_, err := execute(t, "", "serve", "--port", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port must be between")
}

func TestServe_RequiresDatabaseURL(t *testing.T) {
	_, err := execute(t, "", "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--db-url required")
}

func TestPickSecret(t *testing.T) {
	one := map[string][]byte{"a": []byte("x")}
	id, secret, err := pickSecret(one, "")
	require.NoError(t, err)
	assert.Equal(t, "a", id)
	assert.Equal(t, []byte("x"), secret)

	two := map[string][]byte{"a": []byte("x"), "b": []byte("y")}
	_, _, err = pickSecret(two, "")
	assert.ErrorContains(t, err, "--secret-id")

	id, secret, err = pickSecret(two, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", id)
	assert.Equal(t, []byte("y"), secret)

	_, _, err = pickSecret(two, "c")
	assert.Error(t, err)

	_, _, err = pickSecret(nil, "")
	assert.ErrorContains(t, err, "RQ_HMAC_SECRET")
}
