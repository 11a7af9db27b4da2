// Package harness runs merged grammar test fixtures through a checker and
// classifies every case.
//
// # Fixture Format
//
// Fixtures are YAML files with the following structure:
//
//	Config:
//	  Spec: ../../tools/grammarcheckers/pipespec.xml
//	  Variants:
//	    - smegram-dev
//	Tests:
//	  - "Mun {boahtán}${boađán} ihttin."
//	  - "Dat lea buorre."
//
// # Outcomes
//
// Each annotated error and each reported error gets one outcome:
//
//   - tp: the checker found the marked error and suggested the correction
//   - fp1: the checker found the marked error but corrected it wrongly
//   - fp2: the checker flagged an error that is not marked up
//   - fn1: the checker found the marked error but had no correction
//   - fn2: the checker did not find the marked error
//
// A case passes only when all of its outcomes are tp.
//
// # Usage
//
//	cfg, err := fixture.Load(fixture.Options{Files: files}, logger)
//	if err != nil {
//	    return err
//	}
//	runner := harness.New(invoker, logger, harness.WithCaseHook(renderer.Case))
//	result, err := runner.Run(ctx, cfg)
//
// Cases are checked one at a time, in fixture order. Result.Cases keeps each
// test paired with its outcome, so callers never rely on index alignment.
package harness
