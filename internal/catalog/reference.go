package catalog

// referenceItems is the Lotería Barranquilla catalogue: 36 motifs from the
// city's food, riverside life, landmarks and carnival figures.
var referenceItems = []Item{
	"01 PATACÓN DE GUINEO VERDE", "02 ALEGRÍA DE COCO Y ANÍS", "03 BOLLO DE MAÍZ",
	"04 CABALLITO DE PAPAYA", "05 SANCOCHO DE PESCADO", "06 MAZAMORRA DE GUINEO",
	"07 COCADA DE PANELA Y COCO", "08 MOJARRA FRITA", "09 TINAJERO",
	"10 PIEDRA DE FILTRAR", "11 TINAJA DE BARRO", "12 PONCHERA",
	"13 MECEDORA DE MIMBRE", "14 FOGÓN DE LEÑA", "15 TOTUMA Y CUCHARA DE PALO",
	"16 MANTEL DE HULE", "17 ESTACIÓN DEL FERROCARRIL", "18 TRANVÍA DE BARRANQUILLA",
	"19 EL VAPOR DAVID ARANGO", "20 ROBLE MORADO EN FLOR", "21 MANGLARES DE LA CIÉNAGA",
	"22 BOSQUE SECO TROPICAL", "23 BOCAS DE CENIZA", "24 CALLES DE BARRIO ABAJO",
	"25 LA MARIMONDA", "26 LA PALENQUERA", "27 VENDEDOR DE AGUACATES",
	"28 LA NOVIA DE BARRANQUILLA", "29 ALEJANDRO OBREGÓN", "30 ENRIQUE GRAU",
	"31 PESCADOR DE ATARRAYA", "32 AZAFATE", "33 AJIACO SANTAFEREÑO",
	"34 TRANVÍA DE BOGOTÁ", "35 OLLETA Y MOLINILLO", "36 TAMAL SANTAFEREÑO",
}

// referenceTiers is the reference frequency plan: the first 24 items appear
// 7 times each and the last 12 appear 6 times each, for a 240-token pool
// that exactly fills 15 boards of 16 cells.
var referenceTiers = []Tier{
	{First: 0, Last: 24, Count: 7},
	{First: 24, Last: 36, Count: 6},
}

// ReferenceItems returns the reference catalogue labels in order.
func ReferenceItems() []Item {
	items := make([]Item, len(referenceItems))
	copy(items, referenceItems)
	return items
}

// ReferenceTiers returns the reference frequency tiers.
func ReferenceTiers() []Tier {
	tiers := make([]Tier, len(referenceTiers))
	copy(tiers, referenceTiers)
	return tiers
}

// Reference returns the built-in Lotería Barranquilla catalogue.
func Reference() *Catalog {
	c, err := New(referenceItems, referenceTiers)
	if err != nil {
		// The reference configuration is validated by tests; reaching this
		// panic means the built-in data itself is broken.
		panic(err)
	}
	return c
}
