package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) syncCourses() error {
	res, err := cli.platformSvc.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Synced %d courses, %d lessons\n", res.CoursesSynced, res.LessonsSynced)
	for _, msg := range res.Errors {
		fmt.Println(msg)
	}
	return nil
}
