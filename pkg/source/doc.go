// Package source locates and decodes floor-plan path images.
//
// Path images follow the naming convention
//
//	<name>-<floor>-PATH.<ext>
//
// for example "library-2-PATH.png". [ParseFilename] extracts the map name and
// floor, [Scan] lists every conforming file in a directory, and
// [Input.OutputName] derives the matching "<name>-<floor>-map.<format>"
// output file name.
//
// [Decode] and [Open] accept PNG, GIF, JPEG, BMP, TIFF and WebP. Lossless
// formats are strongly preferred: extraction matches colors exactly, and
// lossy compression smears them. [Lossy] reports formats worth warning about.
package source
