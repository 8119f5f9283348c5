// Package config holds the runtime options of sitescraper and loads the
// optional per-site YAML file (.sitescraper).
//
// A configuration file looks like:
//
//	defaults:
//	  delay: 1s
//	sites:
//	  example.com:
//	    maxPages: 200
//	    ignorePatterns:
//	      - "/tag/*"
//	    headers:
//	      Accept-Language: en-US
package config
