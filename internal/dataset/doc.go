// Package dataset loads per-country, per-year CO2 emission records from the
// Our World in Data CSV export and partitions them into immutable series for
// Panama and its seven Central American and Mexican neighbours.
//
// Columns are addressed through the Field enumeration rather than by string,
// so every lookup is checked when the dataset is parsed, not when a chart is
// drawn.
package dataset
