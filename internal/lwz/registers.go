// internal/lwz/registers.go
package lwz

// Register catalog for the Stiebel Eltron LWZ 404 Trend. This is the only
// place bus addresses live; adding a register means adding one entry here.

// Table selects the Modbus register table a value lives in.
type Table string

const (
	Input   Table = "input"
	Holding Table = "holding"
)

// Register describes one named register: where it lives on the bus and how
// its raw words become a physical value.
type Register struct {
	Name     string
	Address  uint16
	Words    int
	Signed   bool
	Scale    float64
	Table    Table
	Writable bool
}

// Bits is the register width used for signed decoding.
func (r Register) Bits() uint {
	return uint(16 * r.Words)
}

// Register names. These double as snapshot field keys.
const (
	OutsideTemp       = "OutsideTemp"
	BathroomTemp      = "BathroomTemp"
	SupplyFanSpeed    = "SupplyFanSpeed"
	ExhaustFanSpeed   = "ExhaustFanSpeed"
	AiringLevelDay    = "AiringLevelDay"
	AiringLevelNight  = "AiringLevelNight"
	HeatingEnergyDay  = "HeatingEnergyDay"
	HotWaterEnergyDay = "HotWaterEnergyDay"
)

var catalog = []Register{
	{Name: OutsideTemp, Address: 6, Words: 1, Signed: true, Scale: 0.1, Table: Input},
	{Name: BathroomTemp, Address: 12, Words: 1, Scale: 0.1, Table: Input},
	{Name: SupplyFanSpeed, Address: 17, Words: 1, Scale: 1, Table: Input},
	{Name: ExhaustFanSpeed, Address: 18, Words: 1, Scale: 1, Table: Input},
	{Name: AiringLevelDay, Address: 1017, Words: 1, Scale: 1, Table: Holding, Writable: true},
	{Name: AiringLevelNight, Address: 1018, Words: 1, Scale: 1, Table: Holding, Writable: true},
	{Name: HeatingEnergyDay, Address: 3510, Words: 1, Scale: 1, Table: Input},
	{Name: HotWaterEnergyDay, Address: 3514, Words: 1, Scale: 1, Table: Input},
}

// All returns the full register catalog.
func All() []Register {
	out := make([]Register, len(catalog))
	copy(out, catalog)
	return out
}

// Names returns the catalog register names in catalog order.
func Names() []string {
	out := make([]string, len(catalog))
	for i, r := range catalog {
		out[i] = r.Name
	}
	return out
}

// Lookup returns the register with the given name.
func Lookup(name string) (Register, bool) {
	for _, r := range catalog {
		if r.Name == name {
			return r, true
		}
	}
	return Register{}, false
}
