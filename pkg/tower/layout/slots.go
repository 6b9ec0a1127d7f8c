package layout

// SlotsPerLayer is the number of candidate positions in a layer.
const SlotsPerLayer = 3

// slotTable[bucket][slot] reports whether the slot holds a block.
var slotTable = [Buckets + 1][SlotsPerLayer]bool{
	1: {false, true, false},
	2: {true, true, false},
	3: {true, false, true},
	4: {true, true, true},
}

// SlotOccupied reports whether slot (0..2) is filled in a layer of the
// given bucket (1..4). Out-of-range arguments report false.
func SlotOccupied(bucket, slot int) bool {
	if bucket < 1 || bucket > Buckets || slot < 0 || slot >= SlotsPerLayer {
		return false
	}
	return slotTable[bucket][slot]
}

// OccupiedSlots lists the filled slots of a bucket in ascending order.
func OccupiedSlots(bucket int) []int {
	var out []int
	for s := range SlotsPerLayer {
		if SlotOccupied(bucket, s) {
			out = append(out, s)
		}
	}
	return out
}
