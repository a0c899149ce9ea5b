// Callisto is an authorization policy service built around an in-memory
// policy set with template linking.
//
// It loads policy statements and templates from YAML files, serves an
// always-consistent snapshot of the linked policy set, and can archive
// snapshots to SQLite for audit and rollback.
//
// Usage:
//
//	# Start the policy service with default configuration
//	callisto run
//
//	# Start with a custom configuration file
//	callisto run --config /etc/callisto/config.yaml
//
//	# Validate policy files
//	callisto lint --dir policies/
//
//	# List the policies and templates in a directory
//	callisto policy list --dir policies/
//
//	# Link a template and print the resulting policy
//	callisto link --dir policies/ --template viewer --id viewer-alice \
//	    --slot '?principal=User::"alice"'
//
//	# Show version information
//	callisto version
package main

func main() {
	Execute()
}
