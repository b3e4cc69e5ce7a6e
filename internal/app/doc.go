// Package app wires the pieces shared by the lobstat commands: it loads the
// configuration, initializes logging and telemetry, opens the artifact
// store and the day-file source, and runs batches of units.
//
// # Usage
//
//	a, err := app.NewApplication(ctx, app.Options{ConfigPath: *configPath})
//	if err != nil {
//	    return err
//	}
//	defer a.Close(ctx)
//
//	report := a.Run(ctx, "reconstruct", app.ReconstructUnits("taq", tickers, dates))
//	return report.Err()
//
// # Shutdown
//
// SignalContext cancels the run context on SIGINT or SIGTERM. Units that
// have not started are reported as cancelled; Close flushes telemetry and
// closes the log file.
//
// Initialization errors are returned to the caller. The package never calls
// os.Exit, leaving exit codes to main.
package app
