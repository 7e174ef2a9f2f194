package pathfind

import (
	"github.com/udisondev/pathfind/internal/geom"
	"github.com/udisondev/pathfind/internal/navmesh"
)

// World grid.
const (
	Regions         = 64 // regions per world side
	ChunksPerRegion = 16 // terrain chunks per region side
	TilesPerChunk   = 1  // navigation tiles per chunk side
	TilesPerRegion  = ChunksPerRegion * TilesPerChunk

	TileVoxelSize     = 112               // height field cells per tile side
	QuadsPerTile      = 8 / TilesPerChunk // terrain quads per tile side
	QuadValuesPerTile = 9*9 + 8*8         // corner and midpoint height samples
	ModelKeyLength    = 128               // fixed model key field size
)

// World dimensions, in yards.
const (
	RegionSize = 533.0 + 1.0/3.0
	ChunkSize  = RegionSize / ChunksPerRegion
	TileSize   = ChunkSize / TilesPerChunk
	CellSize   = TileSize / TileVoxelSize
	CellHeight = 0.25

	// worldOrigin is the distance from the world centre to its north-west corner.
	worldOrigin = Regions / 2 * RegionSize
)

// Agent and mesh parameters.
const (
	WalkableHeight       = 1.6
	WalkableRadius       = 0.3
	WalkableSlope        = 50.0 // degrees
	WalkableClimb        = 1.0
	DetailSampleDistance = 3.0
	DetailSampleMaxError = 0.25

	MaxSimplificationError = 0.5
	MinRegionArea          = 64 // cells
	MergeRegionArea        = 400
	VerticesPerPolygon     = 6

	VoxelWalkableHeight = 6 // WalkableHeight / CellHeight, truncated
	VoxelWalkableClimb  = 4 // WalkableClimb / CellHeight
	VoxelWalkableRadius = 1 // WalkableRadius / CellSize, truncated

	// BorderCells is the ring of cells a tile height field carries around
	// the tile.
	BorderCells = VoxelWalkableRadius + 3

	// heightRayReach is the half height of the FindPreciseZ vertical ray:
	// the detail error plus one voxel of quantization.
	heightRayReach = DetailSampleMaxError + CellHeight
)

// Query limits.
const (
	MaxPathHops    = 4096
	MaxSearchNodes = 65535
)

// Navmesh capacity. Detour refs are 32 bits: 12 tile bits, 10 polygon bits
// and 10 salt bits.
const (
	MaxNavTiles  = 1 << 12
	MaxTilePolys = 1 << 10
)

// File signatures.
const (
	NavSignature uint32 = 'N'<<24 | 'N'<<16 | 'A'<<8 | 'V'
	NavVersion   uint32 = '0'<<24 | '0'<<16 | '0'<<8 | '5'
	NavKindADT   uint32 = 'A'<<24 | 'D'<<16 | 'T'<<8
	NavKindWMO   uint32 = 'W'<<24 | 'M'<<16 | 'O'<<8

	MapSignature uint32 = 'M'<<24 | 'A'<<16 | 'P'<<8 | '1'
	MapVersion   uint32 = 1

	IndexSignature uint32 = 'B'<<24 | 'I'<<16 | 'D'<<8 | 'X'

	// GlobalWMOID is the instance id of the single WMO of a map without terrain.
	GlobalWMOID uint32 = 0xFFFFFFFF
	// globalTileCoord marks the tile file of a map without terrain.
	globalTileCoord uint32 = 0xFFFFFFFF
)

// NavParams lays the detour tile grid over the world.
var NavParams = navmesh.Params{
	Origin:   geom.Vector3{-worldOrigin, -worldOrigin, 0},
	TileSize: TileSize,
	MaxTiles: MaxNavTiles,
	MaxPolys: MaxTilePolys,
	MaxNodes: MaxSearchNodes,
}

// BuildConfig holds the recast settings used to rebuild tiles.
var BuildConfig = navmesh.BuildConfig{
	WalkableHeight:         VoxelWalkableHeight,
	WalkableClimb:          VoxelWalkableClimb,
	BorderSize:             BorderCells,
	MinRegionArea:          MinRegionArea,
	MergeRegionArea:        MergeRegionArea,
	MaxEdgeLen:             VoxelWalkableRadius * 4,
	MaxSimplificationError: MaxSimplificationError,
	MaxVertsPerPoly:        VerticesPerPolygon,
	DetailSampleDist:       DetailSampleDistance,
	DetailSampleMaxError:   DetailSampleMaxError,
	AgentHeight:            WalkableHeight,
	AgentRadius:            WalkableRadius,
	AgentClimb:             WalkableClimb,
}

// searchExtents are the half extents used to snap path endpoints onto the mesh.
var searchExtents = geom.Vector3{5, 5, 5}

// betweenExtents are the half extents used to snap an interpolated point.
var betweenExtents = geom.Vector3{1, 1, 1}
