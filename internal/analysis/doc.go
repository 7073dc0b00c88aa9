// Package analysis ranks a paper's references and assembles the citation
// network around a paper.
//
// RankReferences and BuildNetwork are pure: they operate on data already
// loaded and hold no state. Service loads that data through the repository
// interfaces and records metrics.
package analysis
