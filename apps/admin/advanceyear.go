package main

import (
	"context"
	"fmt"
)

// advanceYear moves all of a school's active students one academic year
// forward. The service refuses to run twice on the same day.
func (cli *commandLine) advanceYear(schoolID string) error {
	count, err := cli.studentSvc.AdvanceAcademicYear(context.Background(), schoolID)
	if err != nil {
		return err
	}
	fmt.Printf("%d student(s) advanced\n", count)
	return nil
}
