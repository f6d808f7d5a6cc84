package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"git.fiblab.net/sim/scenario/index"
	"git.fiblab.net/sim/scenario/network"
	"git.fiblab.net/sim/scenario/query"
	"git.fiblab.net/sim/scenario/scenario"
)

const (
	SHELL_STOP_CHOICES = 5
	SHELL_STOP_RESULTS = 10
	SHELL_ROUTE_LIST   = 10
	// add-route未输入区间时间时的缺省值（单位：分钟）
	SHELL_DEFAULT_TRAVEL = 5
)

var errUsage = errors.New("usage")

// Shell 交互式场景编辑
type Shell struct {
	overlay *scenario.Overlay
	planner *query.Planner
	in      *bufio.Scanner
	out     io.Writer

	maxResults int
	applied    bool

	// 最近一次search或compare的结果，供export使用
	lastResult     *query.Result
	lastComparison *query.Comparison
}

func NewShell(overlay *scenario.Overlay, planner *query.Planner, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		overlay:    overlay,
		planner:    planner,
		in:         bufio.NewScanner(in),
		out:        out,
		maxResults: planner.Options().MaxResults,
	}
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(args ...any) {
	fmt.Fprintln(s.out, args...)
}

func (s *Shell) prompt() {
	status := "not applied"
	if s.applied {
		status = "applied"
	}
	s.printf("[SCENARIO:%d, %s] > ", s.overlay.Len(), status)
}

// 读取一行输入，输入结束时返回false
func (s *Shell) ask(question string) (string, bool) {
	s.printf("%s", question)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// 读取命令直到输入结束或quit
func (s *Shell) Run(ctx context.Context) error {
	s.println("scenario shell, type 'help' for commands")
	s.prompt()
	for s.in.Scan() {
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			s.prompt()
			continue
		}
		if quit := s.Exec(ctx, line); quit {
			return nil
		}
		s.println()
		s.prompt()
	}
	return s.in.Err()
}

// 执行一条命令，返回是否退出
func (s *Shell) Exec(ctx context.Context, line string) bool {
	command, args, _ := strings.Cut(line, " ")
	command = strings.ToLower(command)
	args = strings.TrimSpace(args)
	if strings.HasPrefix(command, "n=") {
		command, args = "n", strings.TrimPrefix(command, "n=")
	}
	var err error
	switch command {
	case "quit", "exit", "q":
		s.println("bye")
		return true
	case "help", "?":
		s.help()
	case "list", "ls":
		s.println(s.overlay.Summary())
	case "clear":
		s.overlay.Clear()
		s.applied = false
		s.println("all modifications removed")
	case "headway":
		err = s.headway(args)
	case "disable":
		err = s.disable(args)
	case "add-route":
		err = s.addRoute()
	case "remove", "rm":
		err = s.remove(args)
	case "apply":
		s.apply()
	case "search":
		err = s.search(ctx, args)
	case "compare":
		err = s.compare(ctx, args)
	case "route", "routes":
		err = s.routes(args)
	case "stop", "stops":
		err = s.stops(args)
	case "n":
		err = s.setMaxResults(args)
	case "export":
		err = s.export(args)
	default:
		s.printf("unknown command: %s, type 'help' for commands\n", command)
	}
	if err != nil {
		s.printf("error: %v\n", err)
	}
	return false
}

func (s *Shell) help() {
	s.println(`  list | ls                         show modifications
  clear                             remove all modifications
  headway <route> <factor>          scale headway (2 = half the trips, 0.5 = twice the trips)
  disable <route>                   disable matching routes
  add-route                         add a new route interactively
  remove <n>                        remove the n-th modification
  apply                             build the scenario network
  search <lat> <lon> <lat> <lon> <HH:MM>
                                    search on the scenario network
  compare <lat> <lon> <lat> <lon> <HH:MM>
                                    compare base and scenario
  route <pattern>                   search routes (ROUTE:<id>, 버스_<name>, 지하철_<name>)
  stop <keyword>                    search stops
  n=<count>                         number of itineraries to show
  export <file.csv>                 write the last search or compare result
  quit | exit | q`)
}

func (s *Shell) modified(msg string) {
	s.println(msg)
	s.applied = false
}

func (s *Shell) headway(args string) error {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return fmt.Errorf("%w: headway <route> <factor>, e.g. headway 2호선 2.0", errUsage)
	}
	// 线路名中可能有空格，最后一项为倍率
	pattern := strings.Join(parts[:len(parts)-1], " ")
	factor, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil {
		return fmt.Errorf("factor must be a number: %s", parts[len(parts)-1])
	}
	msg, err := s.overlay.AddHeadway(pattern, factor)
	if err != nil {
		return err
	}
	s.modified(msg)
	return nil
}

func (s *Shell) disable(args string) error {
	if args == "" {
		return fmt.Errorf("%w: disable <route>, e.g. disable 9호선", errUsage)
	}
	msg, err := s.overlay.AddDisable(args)
	if err != nil {
		return err
	}
	s.modified(msg)
	return nil
}

// 在多个匹配站点中选择一个
func (s *Shell) chooseStop(keyword string) (index.StopInfo, bool) {
	results := s.overlay.SearchStops(keyword, SHELL_STOP_CHOICES)
	switch len(results) {
	case 0:
		s.println("    no matching stop")
		return index.StopInfo{}, false
	case 1:
		return results[0], true
	}
	s.println("    multiple matches:")
	for i, r := range results {
		s.printf("      [%d] %s\n", i+1, r.Name)
	}
	choice, ok := s.ask("    choose (number): ")
	if !ok {
		return index.StopInfo{}, false
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(results) {
		s.println("    invalid choice")
		return index.StopInfo{}, false
	}
	return results[n-1], true
}

func (s *Shell) addRoute() error {
	s.println("=== new route ===")
	name, ok := s.ask("route name: ")
	if !ok || name == "" {
		s.println("cancelled")
		return nil
	}
	b := scenario.NewAddRouteBuilder().
		ShortName(name).
		RouteID(scenario.NEW_TRIP_PREFIX + strings.ReplaceAll(name, " ", "_"))

	typeStr, ok := s.ask("route type (1=subway, 2=rail, 3=bus) [3]: ")
	if !ok {
		return nil
	}
	if typeStr != "" {
		t, err := strconv.Atoi(typeStr)
		if err != nil {
			return fmt.Errorf("route type must be a number: %s", typeStr)
		}
		b.RouteType(network.RouteType(t))
	}

	s.println("stops (search by name, 'done' to finish):")
	names := make([]string, 0)
	for {
		input, ok := s.ask(fmt.Sprintf("  stop %d: ", b.StopCount()+1))
		if !ok {
			s.println("cancelled")
			return nil
		}
		if input == "" || strings.EqualFold(input, "done") {
			if b.StopCount() < 2 {
				s.println("    at least 2 stops are required")
				continue
			}
			break
		}
		if stop, ok := s.chooseStop(input); ok {
			s.printf("    -> %s\n", stop.Name)
			b.AddStop(stop.StopIndex, stop.Name)
			names = append(names, stop.Name)
		}
	}

	s.println("travel time between stops (minutes):")
	for i := 0; i+1 < len(names); i++ {
		input, ok := s.ask(fmt.Sprintf("  %s -> %s [%d]: ", names[i], names[i+1], SHELL_DEFAULT_TRAVEL))
		if !ok {
			return nil
		}
		minutes := SHELL_DEFAULT_TRAVEL
		if input != "" {
			v, err := strconv.Atoi(input)
			if err != nil {
				return fmt.Errorf("travel time must be a number: %s", input)
			}
			minutes = v
		}
		b.TravelTime(minutes)
	}

	if first, ok := s.ask("first departure [06:00]: "); ok && first != "" {
		b.FirstDeparture(first)
	}
	if last, ok := s.ask("last departure [23:00]: "); ok && last != "" {
		b.LastDeparture(last)
	}
	if headway, ok := s.ask("headway (minutes) [10]: "); ok && headway != "" {
		v, err := strconv.Atoi(headway)
		if err != nil {
			return fmt.Errorf("headway must be a number: %s", headway)
		}
		b.HeadwayMinutes(v)
	}

	add, err := b.Build()
	if err != nil {
		return err
	}
	msg, err := s.overlay.AddRoute(add)
	if err != nil {
		return err
	}
	s.modified(msg)
	return nil
}

func (s *Shell) remove(args string) error {
	n, err := strconv.Atoi(args)
	if err != nil {
		return fmt.Errorf("%w: remove <n>, n as listed by 'list'", errUsage)
	}
	m, err := s.overlay.RemoveModification(n - 1)
	if err != nil {
		return err
	}
	s.modified("removed: " + m.Description())
	return nil
}

func (s *Shell) apply() *scenario.Materialized {
	start := time.Now()
	m := s.overlay.Apply()
	s.applied = true
	s.printf("%v (%v)\n", m, time.Since(start))
	return m
}

func parseQuery(args string, maxResults int) (query.Query, error) {
	parts := strings.Fields(args)
	if len(parts) < 5 {
		return query.Query{}, fmt.Errorf("%w: <lat> <lon> <lat> <lon> <HH:MM>, e.g. 37.5547 126.9707 37.4979 127.0276 09:00", errUsage)
	}
	coords := make([]float64, 4)
	for i := range coords {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return query.Query{}, fmt.Errorf("invalid coordinate: %s", parts[i])
		}
		coords[i] = v
	}
	dep, err := network.ParseClock(parts[4])
	if err != nil {
		return query.Query{}, err
	}
	return query.Query{
		FromLat: coords[0], FromLon: coords[1],
		ToLat: coords[2], ToLon: coords[3],
		Departure:  dep,
		MaxResults: maxResults,
	}, nil
}

func (s *Shell) printResult(label string, r *query.Result) {
	if r.Empty() {
		s.printf("[%s] no itinerary (%v)\n", label, r.Elapsed)
		return
	}
	s.printf("[%s] %d itineraries (%v)\n", label, len(r.Itineraries), r.Elapsed)
	for i, it := range r.Itineraries {
		s.printf("  %d. %v\n", i+1, it)
	}
}

func (s *Shell) search(ctx context.Context, args string) error {
	if !s.applied {
		s.println("scenario not applied, run 'apply' first")
		return nil
	}
	q, err := parseQuery(args, s.maxResults)
	if err != nil {
		return err
	}
	r, err := s.planner.PlanMultiCriteria(ctx, s.overlay.Apply(), q)
	if err != nil {
		return err
	}
	s.printResult("scenario", r)
	s.lastResult, s.lastComparison = r, nil
	return nil
}

func (s *Shell) compare(ctx context.Context, args string) error {
	q, err := parseQuery(args, s.maxResults)
	if err != nil {
		return err
	}
	if !s.applied {
		s.apply()
	}
	c, err := s.planner.Compare(ctx, s.overlay.Base(), s.overlay.Apply(), q)
	if err != nil {
		return err
	}
	s.println("=== base ===")
	s.printResult("base", c.Base)
	s.println("=== scenario ===")
	s.printResult("scenario", c.Scenario)
	s.println()
	s.printf("%v", c)
	s.lastResult, s.lastComparison = nil, c
	return nil
}

func (s *Shell) routes(args string) error {
	if args == "" {
		return fmt.Errorf("%w: route <pattern>", errUsage)
	}
	match := s.overlay.SearchRoutes(args)
	s.println(match)
	if !match.IsEmpty() && match.RouteCount() <= SHELL_ROUTE_LIST {
		base := s.overlay.Base()
		for _, i := range match.RouteIndices {
			route := base.Route(i)
			s.printf("  [%d] %s (%d trips)\n", i, route.ShortName, route.TripCount())
		}
	}
	return nil
}

func (s *Shell) stops(args string) error {
	if args == "" {
		return fmt.Errorf("%w: stop <keyword>", errUsage)
	}
	results := s.overlay.SearchStops(args, SHELL_STOP_RESULTS)
	if len(results) == 0 {
		s.println("no matching stop")
		return nil
	}
	s.printf("'%s': %d stops\n", args, len(results))
	for _, stop := range results {
		s.printf("  %v\n", stop)
	}
	return nil
}

func (s *Shell) setMaxResults(args string) error {
	n, err := strconv.Atoi(strings.TrimPrefix(args, "="))
	if err != nil || n <= 0 {
		return fmt.Errorf("%w: n=<count>, e.g. n=10", errUsage)
	}
	s.maxResults = n
	s.printf("showing up to %d itineraries\n", n)
	return nil
}

func (s *Shell) export(args string) error {
	if args == "" {
		return fmt.Errorf("%w: export <file.csv>", errUsage)
	}
	if s.lastResult == nil && s.lastComparison == nil {
		return errors.New("nothing to export, run 'search' or 'compare' first")
	}
	f, err := os.Create(args)
	if err != nil {
		return err
	}
	defer f.Close()
	if s.lastComparison != nil {
		err = query.WriteComparisonCSV(f, s.lastComparison)
	} else {
		err = query.WriteItinerariesCSV(f, query.ItineraryRows("scenario", s.lastResult.Itineraries))
	}
	if err != nil {
		return err
	}
	s.printf("written to %s\n", args)
	return nil
}
