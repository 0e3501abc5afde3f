package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xsj/overwatch-directory/internal/adapter/outbound/container"
	"github.com/0xsj/overwatch-directory/internal/app/bus"
	appquery "github.com/0xsj/overwatch-directory/internal/app/query"
	"github.com/0xsj/overwatch-directory/internal/port/inbound/query"
)

func TestBuildRegistry_WithoutInfrastructure(t *testing.T) {
	registry, err := buildRegistry(container.New(), "reject")
	require.NoError(t, err)

	entries := registry.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "directory.get_service", entries[0].QueryName)
	assert.Equal(t, appquery.GetServiceHandlerName, entries[0].HandlerName)
	assert.Equal(t, "directory.get_service_by_name", entries[1].QueryName)
	assert.Equal(t, "directory.list_services", entries[2].QueryName)
}

func TestBuildRegistry_DuplicateHandler(t *testing.T) {
	c := container.New()
	legacy := query.HandlerFunc[query.ListServices, query.ListServicesResult](
		func(context.Context, query.ListServices) (query.ListServicesResult, error) {
			return query.ListServicesResult{}, nil
		})
	require.NoError(t, container.Instance(c, "legacyListServices", legacy))

	_, err := buildRegistry(c, "reject")
	var cfgErr *bus.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr), "error = %v", err)
}

func TestBuildRegistry_UnknownPolicy(t *testing.T) {
	_, err := buildRegistry(container.New(), "merge")
	assert.Error(t, err)
}

func TestPrintEntries(t *testing.T) {
	registry, err := buildRegistry(container.New(), "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printEntries(&buf, registry.Entries()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "QUERY"))
	assert.Contains(t, lines[1], "directory.get_service")
	assert.Contains(t, lines[1], appquery.GetServiceHandlerName)
}

func TestHandlersCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"handlers", "--policy", "reject"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "directory.list_services")
}

func TestBuildQueryRequest(t *testing.T) {
	req, err := buildQueryRequest("directory.get_service_by_name", `{"name":"billing"}`)
	require.NoError(t, err)
	assert.Equal(t, "directory.get_service_by_name", req.Fields["query"].GetStringValue())
	assert.Equal(t, "billing", req.Fields["params"].GetStructValue().Fields["name"].GetStringValue())

	_, err = buildQueryRequest("directory.get_service", "{")
	assert.Error(t, err)
}

func TestToLogFields(t *testing.T) {
	fields := toLogFields([]interface{}{"query", "directory.get_service", 42, "skipped", "duration", "1ms", "dangling"})
	assert.Len(t, fields, 2)
	assert.Nil(t, toLogFields(nil))
}
