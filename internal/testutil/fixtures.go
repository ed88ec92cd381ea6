package testutil

// SampleCSV is a bulk import with one valid row, one row with a bad isbn and
// one row with neither title nor isbn.
const SampleCSV = `Title,Author,ISBN,Location,notes
Dune,Frank Herbert,978-0-441-17271-9,Shelf A,
Bad Isbn,Someone,bad!,Shelf B,
,,,Shelf C,lonely note
`

// SampleJSON is a bulk import in the JSON array format.
const SampleJSON = `[
  {"title": "Neuromancer", "authors": "William Gibson", "isbn": "9780441569595", "location": "Shelf A"},
  {"name": "Snow Crash", "author": "Neal Stephenson, Someone Else"},
  {"isbn": 9780553380958}
]`
