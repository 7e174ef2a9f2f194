package pathfind

import (
	"cmp"

	"github.com/udisondev/pathfind/internal/bvh"
	"github.com/udisondev/pathfind/internal/geom"
)

// Hit classes, in tie-break order.
const (
	hitWMO = iota
	hitStaticDoodad
	hitTemporary
)

// hitRank orders hits at exactly the same distance so the result does not
// depend on the order tiles are visited in.
type hitRank struct {
	class int
	id    uint64
	sub   int // 0 for the instance itself, nested placement index + 1
}

func (a hitRank) compare(b hitRank) int {
	if c := cmp.Compare(a.class, b.class); c != 0 {
		return c
	}
	if c := cmp.Compare(a.id, b.id); c != 0 {
		return c
	}
	return cmp.Compare(a.sub, b.sub)
}

// rayCast is the state of one ray query over a set of tiles.
type rayCast struct {
	ray     *geom.Ray
	doodads bool

	found bool
	rank  hitRank

	// zone is set when the closest hit is WMO geometry; an unmapped name set
	// yields the zero pair.
	zone    AreaZone
	hasZone bool

	wmos    map[uint32]struct{}
	statics map[uint32]struct{}
	temps   map[uint64]struct{}
}

// castRay intersects ray with the instances of tiles, updating the ray to
// the closest hit.
func (m *Map) castRay(ray *geom.Ray, tiles []*Tile, doodads bool) *rayCast {
	rc := &rayCast{
		ray:     ray,
		doodads: doodads,
		wmos:    make(map[uint32]struct{}),
		statics: make(map[uint32]struct{}),
		temps:   make(map[uint64]struct{}),
	}
	for _, t := range tiles {
		for _, id := range t.wmoIDs {
			if _, ok := rc.wmos[id]; ok {
				continue
			}
			rc.wmos[id] = struct{}{}
			if inst, err := m.registry.WMO(id); err == nil {
				rc.testWMO(inst)
			}
		}
		if !doodads {
			continue
		}
		for _, id := range t.doodadIDs {
			if _, ok := rc.statics[id]; ok {
				continue
			}
			rc.statics[id] = struct{}{}
			inst, err := m.registry.Doodad(id)
			if err != nil {
				continue
			}
			if model := inst.Model(); model != nil {
				rc.test(rc.ray, inst.Inverse, inst.Bounds, model.Index, hitRank{class: hitStaticDoodad, id: inst.ID})
			}
		}
		for guid, inst := range t.temporary {
			if _, ok := rc.temps[guid]; ok {
				continue
			}
			rc.temps[guid] = struct{}{}
			if model := inst.handle.Model(); model != nil {
				rc.test(rc.ray, inst.Inverse, inst.Bounds, model.Index, hitRank{class: hitTemporary, id: guid})
			}
		}
	}
	return rc
}

func (rc *rayCast) testWMO(inst *WMOInstance) {
	model := inst.Model()
	if model == nil {
		return
	}
	rank := hitRank{class: hitWMO, id: uint64(inst.ID)}
	if rc.test(rc.ray, inst.Inverse, inst.Bounds, model.Index, rank) {
		rc.zone, rc.hasZone = model.NameSets[uint32(inst.NameSet)], true
	}
	if !rc.doodads {
		return
	}

	local := rc.ray.Transform(inst.Inverse)
	set := model.DoodadSet(int(inst.DoodadSet))
	for i := range set {
		p := &set[i]
		nested := p.Model()
		if nested == nil {
			continue
		}
		rank.sub = i + 1
		local.SetDistance(rc.ray.Distance())
		if rc.test(local, p.Inverse, p.Bounds, nested.Index, rank) {
			rc.ray.SetDistance(local.Distance())
			rc.hasZone = false
		}
	}
}

// test intersects ray, expressed in the parent space of an instance, with
// the instance's model. It reports whether the hit became the closest one.
func (rc *rayCast) test(ray *geom.Ray, inverse geom.Matrix, bounds geom.BoundingBox, tree *bvh.Tree, rank hitRank) bool {
	best := ray.Distance()
	if d, ok := ray.IntersectBox(bounds); !ok || d > best || (!rc.found && d >= 1) {
		return false
	}

	local := ray.Transform(inverse)
	if rc.found {
		// admit a hit at exactly the current distance so ties can be ranked
		local.SetDistance(geom.NextUp(best))
	}
	if _, ok := tree.IntersectRay(local); !ok {
		return false
	}
	d := local.Distance()
	if rc.found && (d > best || (d == best && rank.compare(rc.rank) >= 0)) {
		return false
	}

	ray.SetDistance(d)
	rc.found = true
	rc.rank = rank
	rc.hasZone = false
	return true
}
