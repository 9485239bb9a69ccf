// Package dataprocessing turns a raw spreadsheet cell grid into the
// canonical cost item collection.
//
// The pipeline runs strictly in order: header detection, column role
// mapping, row normalization, hierarchy code resolution. Only a completely
// empty grid aborts ingestion; every other anomaly (an unmapped column, an
// unparseable code, a duplicate code) degrades into a reportable statistic
// so the caller always gets a usable dataset.
package dataprocessing
