package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/udisondev/pathfind/internal/geom"
	"github.com/udisondev/pathfind/internal/pathfind"
)

var (
	errUnknownMap = errors.New("unknown map")
	errUnknownOp  = errors.New("unknown query")
	errArgs       = errors.New("wrong argument count")
)

// querier answers line based queries of the form "<map> <op> args...".
//
//	heights x y
//	z x y zHint
//	zone x y z
//	los x y z x y z [doodads]
//	path x y z x y z [partial]
//	random x y z radius
//	between x y z x y z distance
//	load rx ry
//	unload rx ry
//	add guid display x y z orientation
//	remove guid
type querier struct {
	maps map[string]*pathfind.Map
	out  io.Writer
}

func newQuerier(maps map[string]*pathfind.Map, out io.Writer) *querier {
	return &querier{maps: maps, out: out}
}

// Serve answers queries from r until EOF or ctx is done.
func (q *querier) Serve(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("reading queries: %w", err)
					}
				default:
				}
				return nil
			}
			q.answer(line)
		}
	}
}

func (q *querier) answer(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return
	}
	result, err := q.exec(fields)
	if err != nil {
		slog.Debug("query failed", "query", line, "err", err)
		fmt.Fprintf(q.out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(q.out, result)
}

func (q *querier) exec(fields []string) (string, error) {
	if len(fields) < 2 {
		return "", errArgs
	}
	m, ok := q.maps[fields[0]]
	if !ok {
		return "", fmt.Errorf("%w %q", errUnknownMap, fields[0])
	}
	op, args := fields[1], fields[2:]

	switch op {
	case "heights":
		v, err := floats(args, 2)
		if err != nil {
			return "", err
		}
		if err := ensureRegion(m, v[0], v[1]); err != nil {
			return "", err
		}
		hs, err := m.FindHeights(v[0], v[1])
		if err != nil {
			return "", err
		}
		return formatFloats(hs), nil

	case "z":
		v, err := floats(args, 3)
		if err != nil {
			return "", err
		}
		if err := ensureRegion(m, v[0], v[1]); err != nil {
			return "", err
		}
		z, err := m.FindPreciseZ(v[0], v[1], v[2])
		if err != nil {
			return "", err
		}
		return formatFloat(z), nil

	case "zone":
		v, err := floats(args, 3)
		if err != nil {
			return "", err
		}
		if err := ensureRegion(m, v[0], v[1]); err != nil {
			return "", err
		}
		zone, area, ok := m.ZoneAndArea(geom.Vector3{v[0], v[1], v[2]})
		if !ok {
			return "none", nil
		}
		return fmt.Sprintf("zone=%d area=%d", zone, area), nil

	case "los":
		a, b, flag, err := segment(args)
		if err != nil {
			return "", err
		}
		if err := ensureRegions(m, a, b); err != nil {
			return "", err
		}
		return strconv.FormatBool(m.LineOfSight(a, b, flag == "doodads")), nil

	case "path":
		a, b, flag, err := segment(args)
		if err != nil {
			return "", err
		}
		if err := ensureRegions(m, a, b); err != nil {
			return "", err
		}
		path := m.FindPath(a, b, flag == "partial")
		if path == nil {
			return "no path", nil
		}
		return formatPoints(path), nil

	case "random":
		v, err := floats(args, 4)
		if err != nil {
			return "", err
		}
		if err := ensureRegion(m, v[0], v[1]); err != nil {
			return "", err
		}
		p, ok := m.FindRandomPointAroundCircle(geom.Vector3{v[0], v[1], v[2]}, v[3])
		if !ok {
			return "none", nil
		}
		return formatPoints([]geom.Vector3{p}), nil

	case "between":
		v, err := floats(args, 7)
		if err != nil {
			return "", err
		}
		a, b := geom.Vector3{v[0], v[1], v[2]}, geom.Vector3{v[3], v[4], v[5]}
		if err := ensureRegions(m, a, b); err != nil {
			return "", err
		}
		p, ok := m.FindPointInBetweenVectors(a, b, v[6])
		if !ok {
			return "none", nil
		}
		return formatPoints([]geom.Vector3{p}), nil

	case "load", "unload":
		if len(args) != 2 {
			return "", errArgs
		}
		rx, err := strconv.Atoi(args[0])
		if err != nil {
			return "", err
		}
		ry, err := strconv.Atoi(args[1])
		if err != nil {
			return "", err
		}
		if op == "unload" {
			m.UnloadRegion(rx, ry)
			return fmt.Sprintf("tiles=%d", m.TileCount()), nil
		}
		loaded, err := m.LoadRegion(rx, ry)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("loaded=%t tiles=%d", loaded, m.TileCount()), nil

	case "add":
		if len(args) != 6 {
			return "", errArgs
		}
		guid, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return "", err
		}
		display, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return "", err
		}
		v, err := floats(args[2:], 4)
		if err != nil {
			return "", err
		}
		pos := geom.Vector3{v[0], v[1], v[2]}
		if err := m.AddGameObjectWithOrientation(guid, uint32(display), pos, v[3], 0); err != nil {
			return "", err
		}
		return fmt.Sprintf("objects=%d", m.GameObjects()), nil

	case "remove":
		if len(args) != 1 {
			return "", errArgs
		}
		guid, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return "", err
		}
		removed, err := m.RemoveGameObject(guid)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("removed=%t objects=%d", removed, m.GameObjects()), nil
	}
	return "", fmt.Errorf("%w %q", errUnknownOp, op)
}

// ensureRegion loads the region under (x, y) on terrain maps.
func ensureRegion(m *pathfind.Map, x, y float32) error {
	if !m.HasRegions() {
		return nil
	}
	rx, ry := pathfind.WorldToRegion(x, y)
	if m.IsRegionLoaded(rx, ry) || !m.HasRegion(rx, ry) {
		return nil
	}
	if _, err := m.LoadRegion(rx, ry); err != nil {
		return fmt.Errorf("loading region %d,%d: %w", rx, ry, err)
	}
	return nil
}

func ensureRegions(m *pathfind.Map, points ...geom.Vector3) error {
	for _, p := range points {
		if err := ensureRegion(m, p.X(), p.Y()); err != nil {
			return err
		}
	}
	return nil
}

// segment parses two points followed by an optional flag word.
func segment(args []string) (a, b geom.Vector3, flag string, err error) {
	if len(args) == 7 {
		flag = args[6]
		args = args[:6]
	}
	v, err := floats(args, 6)
	if err != nil {
		return a, b, "", err
	}
	return geom.Vector3{v[0], v[1], v[2]}, geom.Vector3{v[3], v[4], v[5]}, flag, nil
}

func floats(args []string, n int) ([]float32, error) {
	if len(args) != n {
		return nil, errArgs
	}
	out := make([]float32, n)
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', 3, 32)
}

func formatFloats(fs []float32) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = formatFloat(f)
	}
	return strings.Join(parts, " ")
}

func formatPoints(ps []geom.Vector3) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = formatFloat(p.X()) + "," + formatFloat(p.Y()) + "," + formatFloat(p.Z())
	}
	return strings.Join(parts, " ")
}
