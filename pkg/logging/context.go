package logging

import (
	"context"
)

const (
	TraceIDKey        = "trace_id"
	MasterdataIDKey   = "masterdata_id"
	ClientIDKey       = "client_id"
	OrganizationIDKey = "organization_id"
)

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

func WithMasterdataID(ctx context.Context, masterdataID string) context.Context {
	return context.WithValue(ctx, MasterdataIDKey, masterdataID)
}

func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ClientIDKey, clientID)
}

func WithOrganizationID(ctx context.Context, organizationID string) context.Context {
	return context.WithValue(ctx, OrganizationIDKey, organizationID)
}

func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

func GetMasterdataID(ctx context.Context) string {
	if masterdataID, ok := ctx.Value(MasterdataIDKey).(string); ok {
		return masterdataID
	}
	return ""
}

func GetClientID(ctx context.Context) string {
	if clientID, ok := ctx.Value(ClientIDKey).(string); ok {
		return clientID
	}
	return ""
}

func GetOrganizationID(ctx context.Context) string {
	if organizationID, ok := ctx.Value(OrganizationIDKey).(string); ok {
		return organizationID
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 8)

	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	if masterdataID := GetMasterdataID(ctx); masterdataID != "" {
		fields = append(fields, "masterdata_id", masterdataID)
	}

	if clientID := GetClientID(ctx); clientID != "" {
		fields = append(fields, "client_id", clientID)
	}

	if organizationID := GetOrganizationID(ctx); organizationID != "" {
		fields = append(fields, "organization_id", organizationID)
	}

	return fields
}
