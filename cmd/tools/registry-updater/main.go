// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"scholarship-workers/pkg/registry"
)

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = runList(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	default:
		help()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runList(args []string) error {
	cmd := flag.NewFlagSet("list", flag.ExitOnError)
	path := cmd.String("path", "configs/activity-registry.json", "Path to registry file")
	category := cmd.String("category", "", "Only list activities in this category")
	cmd.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return err
	}

	activities := append([]registry.Activity(nil), reg.Activities...)
	sort.Slice(activities, func(i, j int) bool { return activities[i].TaskType < activities[j].TaskType })

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "TASK TYPE\tSTATUS\tVERSION\tTIMEOUT\tERROR CODES")
	for _, a := range activities {
		if *category != "" && a.Category != *category {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.TaskType, a.ImplementationStatus, a.Version, a.Timeout, strings.Join(a.ErrorCodes, ","))
	}
	return w.Flush()
}

func runValidate(args []string) error {
	cmd := flag.NewFlagSet("validate", flag.ExitOnError)
	path := cmd.String("path", "configs/activity-registry.json", "Path to registry file")
	cmd.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry %s is invalid:\n%w", *path, err)
	}
	fmt.Printf("Registry %s is valid (%d activities).\n", *path, len(reg.Activities))
	return nil
}

func runUpdate(args []string) error {
	cmd := flag.NewFlagSet("update", flag.ExitOnError)
	path := cmd.String("path", "configs/activity-registry.json", "Path to registry file")
	taskType := cmd.String("taskType", "", "Task type of the activity to update")
	field := cmd.String("field", "", "Field to update (status, version, timeout)")
	value := cmd.String("value", "", "New value for the field")
	cmd.Parse(args)

	if *taskType == "" || *field == "" || *value == "" {
		cmd.Usage()
		return fmt.Errorf("taskType, field and value are required")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return err
	}
	activity, ok := reg.Find(*taskType)
	if !ok {
		return fmt.Errorf("activity %s not found", *taskType)
	}

	switch *field {
	case "status":
		activity.ImplementationStatus = *value
	case "version":
		activity.Version = *value
	case "timeout":
		activity.Timeout = *value
	default:
		return fmt.Errorf("unsupported field %q", *field)
	}

	if err := reg.Validate(); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}
	if err := reg.Save(*path); err != nil {
		return err
	}
	fmt.Printf("Updated %s.%s = %s\n", *taskType, *field, *value)
	return nil
}

func help() {
	fmt.Println("Usage: registry-updater <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  list      List registered activities")
	fmt.Println("  validate  Check ids, task types, statuses, timeouts and schemas")
	fmt.Println("  update    Change the status, version or timeout of one activity")
}
