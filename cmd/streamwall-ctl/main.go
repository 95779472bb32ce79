// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// streamwall-ctl is a command-line tool for controlling a running
// streamwall daemon.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/streamwall/streamwall/pkg/client"
)

var (
	version    = "0.9"
	apiURL     = "http://localhost:4690"
	jsonOutput = false

	// API client instance
	apiClient *client.Client
)

func main() {
	if env := os.Getenv("STREAMWALL_API"); env != "" {
		apiURL = strings.TrimSuffix(env, "/")
	}

	// Parse global flags and filter them out
	var filteredArgs []string
	for _, arg := range os.Args[1:] {
		if arg == "-json" {
			jsonOutput = true
		} else {
			filteredArgs = append(filteredArgs, arg)
		}
	}

	apiClient = client.New(apiURL)

	if len(filteredArgs) < 1 {
		printUsage()
		os.Exit(1)
	}

	cmd := filteredArgs[0]
	args := filteredArgs[1:]

	var err error
	switch cmd {
	case "status":
		err = cmdStatus(args)
	case "instances":
		err = cmdInstances(args)
	case "launch":
		err = cmdLaunch(args)
	case "terminate":
		err = cmdTerminate(args)
	case "close":
		err = cmdClose(args)
	case "recover":
		err = cmdRecover(args)
	case "arrange":
		err = cmdArrange(args)
	case "optimize":
		err = cmdOptimize(args)
	case "profile":
		err = cmdProfile(args)
	case "layout":
		err = cmdLayout(args)
	case "settings":
		err = cmdSettings(args)
	case "events":
		err = cmdEvents(args)
	case "crash":
		err = cmdCrash(args)
	case "version", "-v", "--version":
		fmt.Printf("streamwall-ctl %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`streamwall-ctl - Control a running streamwall daemon

Usage:
  streamwall-ctl [-json] <command> [arguments]

Global Flags:
  -json            Output in JSON format

Environment:
  STREAMWALL_API   Base URL of the streamwall API (default: http://localhost:4690)

Commands:
  status                     Show daemon status and resource usage
  instances                  List the session's slots

  launch                     Launch a session from settings/active profile
  terminate                  End the session, closing every instance
  close <n>                  Close n instances from the tail of the session
  close slot <slot>          Close a single slot
  recover <slot>             Relaunch a crashed slot
  arrange [n]                Re-tile the session's windows (or n ad hoc windows)
  optimize                   Lower the scheduling priority of browser processes

  profile list               List profiles
  profile show <id>          Show one profile
  profile activate <id>      Make a profile active
  profile deactivate         Clear the active profile
  profile delete <id>        Delete a profile

  layout list                List layouts
  layout activate <id>       Make a layout active
  layout deactivate          Clear the active layout
  layout delete <id>         Delete a layout

  settings                   Show the current settings
  settings set [options]     Update settings
    -channel <name>          Channel to watch
    -count <n>               Number of windows
    -quality <q>             Stream quality (auto, source, 720p, 480p, 360p, 160p)
    -memory-limit <mb>       Per-instance memory limit (0 clears it)

  events [options]           Show event history
    -type <pattern>          Filter by type pattern (e.g. "instance.*")
    -n <limit>               Number of events (default: 50)

  crash list                 List crash reports
  crash show [id]            Show a crash report (newest when id omitted)
  crash clear                Delete all crash reports

  version                    Show version
  help                       Show this help`)
}

func ctx() context.Context {
	return context.Background()
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func cmdStatus(args []string) error {
	status, err := apiClient.Session.Status(ctx())
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(status)
	}

	fmt.Printf("streamwall %s\n", status.Version)
	if status.Running {
		fmt.Printf("Session:  running (%d/%d alive)\n", status.Alive, status.Slots)
	} else {
		fmt.Println("Session:  not running")
	}
	fmt.Printf("Channel:  %s (quality %s, %d windows)\n",
		status.Settings.Destination, status.Settings.Quality, status.Settings.WindowCount)
	if status.ActiveProfile != "" {
		fmt.Printf("Profile:  %s\n", status.ActiveProfile)
	}
	if status.ActiveLayout != "" {
		fmt.Printf("Layout:   %s\n", status.ActiveLayout)
	}
	if status.Resources != nil {
		fmt.Printf("Memory:   %.1f MB across %d processes\n",
			float64(status.Resources.TotalRSSBytes)/(1024*1024), len(status.Resources.Processes))
		fmt.Printf("Network:  ↓ %.1f KB/s  ↑ %.1f KB/s\n",
			status.Resources.Network.BytesRecvPerSec/1024, status.Resources.Network.BytesSentPerSec/1024)
	}
	return nil
}

func cmdInstances(args []string) error {
	list, err := apiClient.Session.Instances(ctx())
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(list)
	}

	if len(list.Instances) == 0 {
		fmt.Println("No instances")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLOT\tLABEL\tSTATE\tPID\tLAST SEEN")
	for _, inst := range list.Instances {
		lastSeen := "-"
		if !inst.LastChecked.IsZero() {
			lastSeen = inst.LastChecked.Format("15:04:05")
		}
		pid := "-"
		if inst.PID > 0 {
			pid = strconv.Itoa(inst.PID)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", inst.Slot, inst.Label, inst.State, pid, lastSeen)
	}
	return w.Flush()
}

func cmdLaunch(args []string) error {
	// Launching can take a while with a launch delay between spawns.
	c := client.New(apiURL, client.WithTimeout(5*time.Minute))
	instances, err := c.Session.Launch(ctx())
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(instances)
	}

	fmt.Printf("Launched %d instances\n", len(instances))
	return nil
}

func cmdTerminate(args []string) error {
	if err := apiClient.Session.Terminate(ctx()); err != nil {
		return err
	}
	if !jsonOutput {
		fmt.Println("Session stopped")
	}
	return nil
}

func cmdClose(args []string) error {
	if len(args) == 2 && args[0] == "slot" {
		slot, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid slot: %s", args[1])
		}
		if err := apiClient.Session.TerminateSlot(ctx(), slot); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Printf("Closed slot %d\n", slot)
		}
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("usage: streamwall-ctl close <n> | close slot <slot>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid count: %s", args[0])
	}
	removed, err := apiClient.Session.TerminateCount(ctx(), n)
	if err != nil {
		return err
	}
	if !jsonOutput {
		fmt.Printf("Closed %d instances\n", removed)
	}
	return nil
}

func cmdRecover(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: streamwall-ctl recover <slot>")
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid slot: %s", args[0])
	}
	if err := apiClient.Session.RecoverSlot(ctx(), slot); err != nil {
		return err
	}
	if !jsonOutput {
		fmt.Printf("Recovered slot %d\n", slot)
	}
	return nil
}

func cmdArrange(args []string) error {
	var windows []client.ArrangedWindow
	var err error

	if len(args) > 0 {
		count, convErr := strconv.Atoi(args[0])
		if convErr != nil || count <= 0 {
			return fmt.Errorf("invalid count: %s", args[0])
		}
		windows, err = apiClient.Session.ArrangeCount(ctx(), count)
	} else {
		windows, err = apiClient.Session.Arrange(ctx())
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(windows)
	}

	for _, win := range windows {
		if win.Error != "" {
			fmt.Printf("window %d: %s\n", win.Window, win.Error)
			continue
		}
		fmt.Printf("window %d -> %dx%d at (%d,%d)\n",
			win.Window, win.Rect.Width, win.Rect.Height, win.Rect.X, win.Rect.Y)
	}
	fmt.Printf("Arranged %d windows\n", len(windows))
	return nil
}

func cmdOptimize(args []string) error {
	count, err := apiClient.Monitor.Optimize(ctx())
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(map[string]int{"optimized": count})
	}
	fmt.Printf("Re-niced %d browser processes\n", count)
	return nil
}

func cmdProfile(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: streamwall-ctl profile <list|show|activate|deactivate|delete>")
	}

	switch args[0] {
	case "list":
		profiles, err := apiClient.Profiles.List(ctx())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(profiles)
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tWINDOWS\tCHANNEL\tQUALITY")
		for _, p := range profiles {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", p.ID, p.Name, p.WindowCount, p.Destination, p.Quality)
		}
		return w.Flush()

	case "show":
		if len(args) != 2 {
			return fmt.Errorf("usage: streamwall-ctl profile show <id>")
		}
		profile, err := apiClient.Profiles.Get(ctx(), args[1])
		if err != nil {
			return err
		}
		return printJSON(profile)

	case "activate":
		if len(args) != 2 {
			return fmt.Errorf("usage: streamwall-ctl profile activate <id>")
		}
		if err := apiClient.Profiles.Activate(ctx(), args[1]); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Println("Profile activated")
		}
		return nil

	case "deactivate":
		if err := apiClient.Profiles.Deactivate(ctx()); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Println("Profile deactivated")
		}
		return nil

	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: streamwall-ctl profile delete <id>")
		}
		if err := apiClient.Profiles.Delete(ctx(), args[1]); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Println("Profile deleted")
		}
		return nil

	default:
		return fmt.Errorf("unknown profile command: %s", args[0])
	}
}

func cmdLayout(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: streamwall-ctl layout <list|activate|deactivate|delete>")
	}

	switch args[0] {
	case "list":
		layouts, err := apiClient.Layouts.List(ctx())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(layouts)
		}
		if len(layouts) == 0 {
			fmt.Println("No layouts")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMONITOR\tGRID\tWINDOWS")
		for _, l := range layouts {
			monitor := fmt.Sprintf("%dx%d+%d+%d", l.Monitor.Width, l.Monitor.Height, l.Monitor.X, l.Monitor.Y)
			grid := fmt.Sprintf("%dx%d", l.Grid.Cols, l.Grid.Rows)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", l.ID, l.Name, monitor, grid, l.WindowCount)
		}
		return w.Flush()

	case "activate":
		if len(args) != 2 {
			return fmt.Errorf("usage: streamwall-ctl layout activate <id>")
		}
		if err := apiClient.Layouts.Activate(ctx(), args[1]); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Println("Layout activated")
		}
		return nil

	case "deactivate":
		if err := apiClient.Layouts.Deactivate(ctx()); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Println("Layout deactivated")
		}
		return nil

	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: streamwall-ctl layout delete <id>")
		}
		if err := apiClient.Layouts.Delete(ctx(), args[1]); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Println("Layout deleted")
		}
		return nil

	default:
		return fmt.Errorf("unknown layout command: %s", args[0])
	}
}

func cmdSettings(args []string) error {
	if len(args) == 0 {
		settings, err := apiClient.Settings.Get(ctx())
		if err != nil {
			return err
		}
		return printJSON(settings)
	}

	if args[0] != "set" {
		return fmt.Errorf("unknown settings command: %s", args[0])
	}

	setFlags := flag.NewFlagSet("settings set", flag.ExitOnError)
	channel := setFlags.String("channel", "", "Channel to watch")
	count := setFlags.Int("count", 0, "Number of windows")
	quality := setFlags.String("quality", "", "Stream quality")
	memoryLimit := setFlags.Int("memory-limit", -1, "Per-instance memory limit in MB (0 clears it)")
	setFlags.Parse(args[1:])

	settings, err := apiClient.Settings.Get(ctx())
	if err != nil {
		return err
	}

	if *channel != "" {
		settings.Destination = *channel
	}
	if *count > 0 {
		settings.WindowCount = *count
	}
	if *quality != "" {
		settings.Quality = *quality
	}
	if *memoryLimit == 0 {
		settings.MemoryLimitMB = nil
	} else if *memoryLimit > 0 {
		settings.MemoryLimitMB = memoryLimit
	}

	updated, err := apiClient.Settings.Update(ctx(), *settings)
	if err != nil {
		return err
	}
	return printJSON(updated)
}

func cmdEvents(args []string) error {
	eventFlags := flag.NewFlagSet("events", flag.ExitOnError)
	typePattern := eventFlags.String("type", "", "Filter by type pattern")
	limit := eventFlags.Int("n", 50, "Number of events")
	eventFlags.Parse(args)

	query := client.EventQuery{Limit: *limit}
	if *typePattern != "" {
		query.Types = []string{*typePattern}
	}

	events, err := apiClient.Events.History(ctx(), query)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(events)
	}

	for _, event := range events {
		line := fmt.Sprintf("%s  %s", event.Timestamp.Format("15:04:05"), event.Type)
		if len(event.Payload) > 0 {
			payload, _ := json.Marshal(event.Payload)
			line += "  " + string(payload)
		}
		fmt.Println(line)
	}
	return nil
}

func cmdCrash(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: streamwall-ctl crash <list|show|clear>")
	}

	switch args[0] {
	case "list":
		reports, err := apiClient.Crashes.List(ctx())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(reports)
		}
		if len(reports) == 0 {
			fmt.Println("No crash reports")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSLOT\tLABEL\tEXIT\tTRIGGER")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n", r.ID, r.Slot, r.Label, r.ExitCode, r.Trigger)
		}
		return w.Flush()

	case "show":
		var report *client.CrashReport
		var err error
		if len(args) == 2 {
			report, err = apiClient.Crashes.Get(ctx(), args[1])
		} else {
			report, err = apiClient.Crashes.Newest(ctx())
		}
		if err != nil {
			return err
		}
		if report == nil {
			fmt.Println("No crash reports")
			return nil
		}
		return printJSON(report)

	case "clear":
		if err := apiClient.Crashes.Clear(ctx()); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Println("All crash reports cleared")
		}
		return nil

	default:
		return fmt.Errorf("unknown crash command: %s", args[0])
	}
}
