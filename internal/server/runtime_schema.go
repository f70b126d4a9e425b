package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

type rowQuerier interface {
	QueryRow(context.Context, string, ...any) pgx.Row
}

type schemaColumn struct {
	table  string
	column string
}

var projectionColumns = []schemaColumn{
	{table: "IntakeEvent", column: "childId"},
	{table: "IntakeEvent", column: "startAt"},
	{table: "IntakeEvent", column: "intakeType"},
	{table: "IntakeEvent", column: "amountMl"},
	{table: "SleepEvent", column: "childId"},
	{table: "SleepEvent", column: "startAt"},
	{table: "SleepEvent", column: "endAt"},
	{table: "DiaperEvent", column: "childId"},
	{table: "DiaperEvent", column: "at"},
	{table: "DiaperEvent", column: "pee"},
	{table: "DiaperEvent", column: "poo"},
	{table: "DiaperEvent", column: "pooType"},
	{table: "DiaperEvent", column: "color"},
}

func ValidateRuntimeSchema(ctx context.Context, db rowQuerier) error {
	if db == nil {
		return fmt.Errorf("database pool is nil")
	}

	for _, item := range projectionColumns {
		ok, err := columnExists(ctx, db, item.table, item.column)
		if err != nil {
			return fmt.Errorf(
				"failed checking schema for %s.%s: %w",
				item.table,
				item.column,
				err,
			)
		}
		if !ok {
			return fmt.Errorf(
				"required column %s.%s is missing; run prisma migrate deploy",
				item.table,
				item.column,
			)
		}
	}

	return nil
}

func columnExists(ctx context.Context, db rowQuerier, tableName, columnName string) (bool, error) {
	table := strings.TrimSpace(tableName)
	column := strings.TrimSpace(columnName)
	if table == "" || column == "" {
		return false, fmt.Errorf("table/column must not be empty")
	}
	var exists bool
	err := db.QueryRow(
		ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM information_schema.columns
		   WHERE table_schema = current_schema()
		     AND lower(table_name) = lower($1)
		     AND lower(column_name) = lower($2)
		 )`,
		table,
		column,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
