// Package posfile reads reconstructed atom-probe data: POS files for ion
// positions and mass-to-charge ratios, and RRNG files for the range table
// that assigns each mass-to-charge ratio to a species.
//
// Source joins the two into an l1ions.IonSource that streams the POS file
// in chunks rather than holding every record in memory.
package posfile
