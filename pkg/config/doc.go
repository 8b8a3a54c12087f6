// Package config loads stub definition files for the stubserver command.
//
// A definition file describes an HTTP stub and its expectations, an FTP stub
// and its seeded files, or both. YAML is used for .yaml and .yml files and
// JSON otherwise. ${VAR} and ${VAR:-default} references are expanded from
// the environment before parsing.
//
//	http:
//	  port: 8998
//	  expectations:
//	    - name: address lookup
//	      method: GET
//	      url: /address/\d+$
//	      response:
//	        file: ./address.xml
//	        mimeType: text/xml
//	    - method: PUT
//	      url: /address/45
//	      capture: true
//	      response:
//	        status: 201
//	ftp:
//	  port: 2121
//	  files:
//	    foo.txt: "seeded content"
//	  seedGlobs: ["fixtures/**/*.txt"]
//
// Relative paths in a file (response files, seed globs) are resolved against
// the directory holding the definition file.
package config
