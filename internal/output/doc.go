// Package output provides structured output and error handling for the
// filekitty CLI.
//
// Every command works for both humans and automated agents: the Printer
// switches between styled human output and structured JSON based on the
// --json flag, and disables colors when output is piped.
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonMode, output.IsTTY(cmd.OutOrStdout()))
//	printer.Success(map[string]any{"message": "snapshot saved", "id": snap.ID})
//	printer.Error(err)
//
// Errors carry exit codes via ExitError:
//
//	output.ExitSuccess     // 0: success
//	output.ExitUserError   // 1: user error (bad args, not found)
//	output.ExitSystemError // 2: system error (I/O failure)
//	output.ExitConflict    // 3: conflict (state mismatch)
//
// Use the constructors (NewUserError, NewSystemError, NewConflictError)
// so the process exit code and the JSON error payload stay in sync.
package output
