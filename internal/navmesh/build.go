package navmesh

import (
	"errors"
	"fmt"

	"github.com/arl/go-detour/detour"
	"github.com/arl/go-detour/recast"

	"github.com/udisondev/pathfind/internal/geom"
	"github.com/udisondev/pathfind/internal/heightfield"
)

// ErrBuild reports a failed recast stage.
var ErrBuild = errors.New("navmesh build failed")

// BuildConfig holds the recast settings. Voxel quantities are in cells,
// agent sizes in world units.
type BuildConfig struct {
	WalkableHeight int
	WalkableClimb  int
	// BorderSize is the ring of cells around the tile carried by its height
	// field.
	BorderSize             int
	MinRegionArea          int
	MergeRegionArea        int
	MaxEdgeLen             int
	MaxSimplificationError float32
	MaxVertsPerPoly        int
	DetailSampleDist       float32
	DetailSampleMaxError   float32

	AgentHeight float32
	AgentRadius float32
	AgentClimb  float32
}

// BuildTile runs the recast pipeline over hf and returns the detour tile
// data. The tile is the cell of p holding the centre of hf. Polygon flags
// carry the span area flags. It returns nil when nothing is walkable.
func BuildTile(hf *heightfield.Heightfield, p Params, cfg BuildConfig) ([]byte, error) {
	tx, ty := p.TileLoc(hf.BMin.Add(hf.BMax).Mul(0.5))
	fail := func(stage string) error {
		return fmt.Errorf("tile %d,%d: %s: %w", tx, ty, stage, ErrBuild)
	}

	ctx := recast.NewBuildContext(false)
	solid := toRecast(hf, cfg.WalkableClimb)
	recast.FilterWalkableLowHeightSpans(ctx, int32(cfg.WalkableHeight), solid)
	recast.FilterLowHangingWalkableObstacles(ctx, int32(cfg.WalkableClimb), solid)

	chf := &recast.CompactHeightfield{}
	if !recast.BuildCompactHeightfield(ctx, int32(cfg.WalkableHeight), int32(cfg.WalkableClimb), solid, chf) {
		return nil, fail("compact height field")
	}
	if !recast.BuildDistanceField(ctx, chf) {
		return nil, fail("distance field")
	}
	if !recast.BuildRegions(ctx, chf, int32(cfg.BorderSize), int32(cfg.MinRegionArea), int32(cfg.MergeRegionArea)) {
		return nil, fail("regions")
	}
	cset := &recast.ContourSet{}
	if !recast.BuildContours(ctx, chf, cfg.MaxSimplificationError, int32(cfg.MaxEdgeLen), cset, recast.ContourTessWallEdges) {
		return nil, fail("contours")
	}
	if cset.NConts == 0 {
		return nil, nil
	}
	pmesh, ok := recast.BuildPolyMesh(ctx, cset, int32(cfg.MaxVertsPerPoly))
	if !ok {
		return nil, fail("poly mesh")
	}
	dmesh, ok := recast.BuildPolyMeshDetail(ctx, pmesh, chf, cfg.DetailSampleDist, cfg.DetailSampleMaxError)
	if !ok {
		return nil, fail("detail mesh")
	}
	if pmesh.NPolys == 0 {
		return nil, nil
	}
	if pmesh.NVerts >= 0xffff {
		return nil, fmt.Errorf("tile %d,%d: %d vertices: %w", tx, ty, pmesh.NVerts, ErrTooManyVerts)
	}
	if int(pmesh.NPolys) > p.MaxPolys {
		return nil, fmt.Errorf("tile %d,%d: %d polygons: %w", tx, ty, pmesh.NPolys, ErrTooManyPolys)
	}

	// area flags move to the polygon flags; every polygon has area 0
	for i := range pmesh.NPolys {
		if pmesh.Areas[i] != 0 {
			pmesh.Flags[i] = uint16(pmesh.Areas[i])
			pmesh.Areas[i] = 0
		}
	}

	params := detour.NavMeshCreateParams{
		Verts:            pmesh.Verts,
		VertCount:        pmesh.NVerts,
		Polys:            pmesh.Polys,
		PolyAreas:        pmesh.Areas,
		PolyFlags:        pmesh.Flags,
		PolyCount:        pmesh.NPolys,
		Nvp:              pmesh.Nvp,
		DetailMeshes:     dmesh.Meshes,
		DetailVerts:      dmesh.Verts,
		DetailVertsCount: dmesh.NVerts,
		DetailTris:       dmesh.Tris,
		DetailTriCount:   dmesh.NTris,
		WalkableHeight:   cfg.AgentHeight,
		WalkableRadius:   cfg.AgentRadius,
		WalkableClimb:    cfg.AgentClimb,
		TileX:            tx,
		TileY:            ty,
		BMin:             pmesh.BMin,
		BMax:             pmesh.BMax,
		Cs:               hf.CellSize,
		Ch:               hf.CellHeight,
		BuildBvTree:      true,
	}
	data, err := detour.CreateNavMeshData(&params)
	if err != nil {
		return nil, fmt.Errorf("tile %d,%d: %w", tx, ty, err)
	}
	return data, nil
}

// toRecast copies hf into a recast height field. Recast columns run along
// world Y first: cell (x, y) of hf is recast cell (y, x).
func toRecast(hf *heightfield.Heightfield, climb int) *recast.Heightfield {
	bmin, bmax := recastBounds(hf.BMin), recastBounds(hf.BMax)
	solid := recast.NewHeightfield(hf.Height, hf.Width, bmin[:], bmax[:], hf.CellSize, hf.CellHeight)
	for y := range int(hf.Height) {
		for x := range int(hf.Width) {
			for _, s := range hf.Column(x, y) {
				top := min(s.Max, heightfield.MaxHeight)
				solid.AddSpan(int32(y), int32(x), uint16(s.Min), uint16(top), uint8(s.Area), int32(climb))
			}
		}
	}
	return solid
}

func recastBounds(v geom.Vector3) [3]float32 {
	return [3]float32{v.Y(), v.Z(), v.X()}
}
