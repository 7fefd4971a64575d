// Package main provides the entry point for the advisor-backend microservice,
// including standardization of raw technology mentions, version resolution,
// stack inference, container image planning, and the REST/GraphQL API.
package main

import (
	"os"

	"github.com/ortelius/advisor-backend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
