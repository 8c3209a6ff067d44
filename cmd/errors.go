package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/Rana718/schemaseed/internal/database/dataapi"
)

var (
	badRequestHints = []string{
		"Verify the Aurora cluster is running and Data API is enabled",
		"Check that the resource ARN and secret ARN are correct",
		"Ensure your AWS credentials have the necessary permissions",
	}
	databaseErrorHints = []string{
		"Database doesn't exist or name is incorrect",
		"Insufficient permissions to create/access database",
		"Aurora cluster may not be fully initialized",
	}
)

// reportError prints err with the troubleshooting hints for its class.
func reportError(w io.Writer, err error) {
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	failure := dataapi.Classify(err)
	switch failure.Class {
	case dataapi.ClassBadRequest, dataapi.ClassDatabaseError, dataapi.ClassService:
		red.Fprintf(w, "❌ AWS Error (%s): %s\n", failure.Code, failure.Message)

		switch failure.Class {
		case dataapi.ClassBadRequest:
			yellow.Fprintln(w, "\n💡 Troubleshooting tips:")
			writeHints(w, badRequestHints)
		case dataapi.ClassDatabaseError:
			yellow.Fprintln(w, "\n💡 Database Error - Possible causes:")
			writeHints(w, databaseErrorHints)
		}
		return
	}

	if engine := driverEngine(err); engine != "" {
		red.Fprintf(w, "❌ Error: %s error occurred: %v\n", engine, err)
		return
	}

	red.Fprintf(w, "❌ Error: An unexpected error occurred: %v\n", err)
}

func writeHints(w io.Writer, hints []string) {
	for _, hint := range hints {
		fmt.Fprintf(w, "- %s\n", hint)
	}
}

// driverEngine names the database engine that raised err, if any.
func driverEngine(err error) string {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return "MySQL"
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return "PostgreSQL"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return "SQLite"
	}
	return ""
}
